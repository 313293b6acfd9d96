package project

import (
	"reflect"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/thunderbird/pulumi/pkg/set"
)

// Flatten recursively walks a nested collection of resources, reducing it to
// its irreducible elements: pulumi Resources and Outputs. The accepted
// shapes are a Resource, an Output, a Component (descended into via its
// registered resource tree), a map (values walked, keys discarded), or a
// slice. Typed slices and maps are handled reflectively; anything else is a
// scalar and is skipped. Elements are de-duplicated by identity and returned
// in no particular order.
//
// Cycles are a caller error: component trees are finite and acyclic by
// construction, and Flatten does not defend against violations.
func Flatten(item any) []any {
	seen := make(set.Set[any])
	var flattened []any
	flattenInto(item, seen, &flattened)
	return flattened
}

func flattenInto(item any, seen set.Set[any], out *[]any) {
	switch v := item.(type) {
	case nil:

	case ComponentResource:
		for _, member := range v.base().resources {
			flattenInto(member, seen, out)
		}

	case pulumi.Resource:
		emit(v, seen, out)
		// A resource's own output fields are deferred values in their own
		// right; surface them so the barrier can await them.
		for _, o := range outputFields(v) {
			emit(o, seen, out)
		}

	case pulumi.Output:
		emit(v, seen, out)

	case map[string]any:
		for _, member := range v {
			flattenInto(member, seen, out)
		}

	case []any:
		for _, member := range v {
			flattenInto(member, seen, out)
		}

	default:
		flattenReflect(v, seen, out)
	}
}

func emit(v any, seen set.Set[any], out *[]any) {
	if seen.Contains(v) {
		return
	}
	seen.Add(v)
	*out = append(*out, v)
}

// flattenReflect descends into container shapes the static type switch
// cannot name, such as []*s3.Bucket or map[string]subnetGroup.
func flattenReflect(item any, seen set.Set[any], out *[]any) {
	rv := reflect.ValueOf(item)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if rv.Index(i).CanInterface() {
				flattenInto(rv.Index(i).Interface(), seen, out)
			}
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if iter.Value().CanInterface() {
				flattenInto(iter.Value().Interface(), seen, out)
			}
		}
	}
}

var outputType = reflect.TypeOf((*pulumi.Output)(nil)).Elem()

// outputFields returns the exported, populated Output-typed fields of a
// resource. Zero-valued outputs carry no state and can never resolve, so
// they are not reported.
func outputFields(res pulumi.Resource) []pulumi.Output {
	rv := reflect.ValueOf(res)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var outs []pulumi.Output
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		if !rt.Field(i).IsExported() {
			continue
		}
		f := rv.Field(i)
		if !f.Type().Implements(outputType) || f.IsZero() {
			continue
		}
		outs = append(outs, f.Interface().(pulumi.Output))
	}
	return outs
}
