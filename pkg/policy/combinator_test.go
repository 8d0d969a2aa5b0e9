package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnyFilter(t *testing.T) {
	t.Run("passes when every child passes", func(t *testing.T) {
		f1, f2 := pass("ignored"), pass()
		assert.Equal(t, Result{Pass: true}, NewAnyFilter(f1, f2).Evaluate(nil))
		assert.EqualValues(t, 1, f2.calls.Load())
	})

	t.Run("returns first failure verbatim and stops", func(t *testing.T) {
		f1, f2 := fail("first"), fail("second")
		assert.Equal(t, f1.res, NewAnyFilter(f1, f2).Evaluate(nil))
		assert.EqualValues(t, 0, f2.calls.Load())
	})

	t.Run("second child fails", func(t *testing.T) {
		f1, f2 := pass(), fail("second")
		assert.Equal(t, f2.res, NewAnyFilter(f1, f2).Evaluate(nil))
	})

	t.Run("empty passes", func(t *testing.T) {
		assert.True(t, NewAnyFilter().Evaluate(nil).Pass)
	})
}

func TestAllFilter(t *testing.T) {
	tests := []struct {
		name string
		kids []*stubFilter
		want Result
	}{
		{
			name: "both fail",
			kids: []*stubFilter{fail("a"), fail("b")},
			want: Result{Pass: false, Messages: []string{"a", "b"}},
		},
		{
			name: "one fails, messages kept",
			kids: []*stubFilter{pass(), fail("b")},
			want: Result{Pass: true, Messages: []string{"b"}},
		},
		{
			name: "none fail",
			kids: []*stubFilter{pass("x"), pass()},
			want: Result{Pass: true},
		},
		{
			name: "empty fails",
			want: Result{Pass: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			children := make([]Filter, len(tt.kids))
			for i, k := range tt.kids {
				children[i] = k
			}
			assert.Equal(t, tt.want, NewAllFilter(children...).Evaluate(nil))
			for _, k := range tt.kids {
				assert.EqualValues(t, 1, k.calls.Load(), "every child runs")
			}
		})
	}
}

func TestCombinatorTruthTable(t *testing.T) {
	for _, a := range []bool{true, false} {
		for _, b := range []bool{true, false} {
			mk := func(ok bool) Filter {
				if ok {
					return pass()
				}
				return fail("m")
			}
			assert.Equal(t, a && b, NewAnyFilter(mk(a), mk(b)).Evaluate(nil).Pass, "any(%v,%v)", a, b)
			assert.Equal(t, a || b, NewAllFilter(mk(a), mk(b)).Evaluate(nil).Pass, "all(%v,%v)", a, b)
		}
	}
}
