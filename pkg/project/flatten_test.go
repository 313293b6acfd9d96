package project

import (
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/assert"
)

type fakeResource struct {
	pulumi.CustomResourceState
}

type fakeBucket struct {
	pulumi.CustomResourceState

	Arn pulumi.StringOutput
}

func Test_Flatten(t *testing.T) {
	r1 := &fakeResource{}
	r2 := &fakeResource{}
	r3 := &fakeResource{}
	out := pulumi.String("pending").ToStringOutput()

	tests := []struct {
		name string
		item any
		want int
	}{
		{
			name: "nil",
			item: nil,
			want: 0,
		},
		{
			name: "empty map",
			item: map[string]any{},
			want: 0,
		},
		{
			name: "single resource",
			item: r1,
			want: 1,
		},
		{
			name: "single output",
			item: out,
			want: 1,
		},
		{
			name: "list of map of resources",
			item: []any{
				map[string]any{"a": r1, "b": r2},
				map[string]any{"c": r3},
			},
			want: 3,
		},
		{
			name: "map of list of resources",
			item: map[string]any{
				"ab": []any{r1, r2},
				"c":  []any{r3},
			},
			want: 3,
		},
		{
			name: "typed slice",
			item: []*fakeResource{r1, r2, r3},
			want: 3,
		},
		{
			name: "typed map",
			item: map[string]*fakeResource{"a": r1, "b": r2},
			want: 2,
		},
		{
			name: "duplicates collapse by identity",
			item: []any{r1, r1, map[string]any{"again": r1}},
			want: 1,
		},
		{
			name: "scalars are skipped",
			item: map[string]any{"name": "frontend", "count": 3, "res": r1},
			want: 1,
		},
		{
			name: "mixed resources and outputs",
			item: []any{r1, out, map[string]any{"r": r2}},
			want: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Len(Flatten(tt.item), tt.want)
		})
	}
}

func Test_FlattenShapeInvariance(t *testing.T) {
	assert := assert.New(t)

	r1 := &fakeResource{}
	r2 := &fakeResource{}
	listOfMap := []any{map[string]any{"a": r1}, map[string]any{"b": r2}}
	mapOfList := map[string]any{"ab": []any{r1, r2}}

	a := Flatten(listOfMap)
	b := Flatten(mapOfList)
	assert.Len(a, 2)
	assert.ElementsMatch(a, b)
}

func Test_FlattenComponent(t *testing.T) {
	assert := assert.New(t)

	r1 := &fakeResource{}
	r2 := &fakeResource{}

	inner := &Component{}
	inner.resources = map[string]any{"r2": r2}
	outer := &Component{}
	outer.resources = map[string]any{
		"r1":     r1,
		"nested": inner,
	}

	// components are containers: descended into, never emitted
	flat := Flatten(outer)
	assert.Len(flat, 2)
	assert.ElementsMatch(flat, []any{r1, r2})
}

func Test_FlattenEmptyComponent(t *testing.T) {
	assert := assert.New(t)

	c := &Component{}
	c.resources = map[string]any{}
	assert.Empty(Flatten(c))
}

func Test_FlattenResourceOutputFields(t *testing.T) {
	assert := assert.New(t)

	withArn := &fakeBucket{Arn: pulumi.String("arn:aws:s3:::b").ToStringOutput()}
	flat := Flatten(withArn)
	assert.Len(flat, 2)
	assert.Contains(flat, any(withArn))

	// zero-valued outputs carry no state and are not surfaced
	bare := &fakeBucket{}
	assert.Len(Flatten(bare), 1)
}
