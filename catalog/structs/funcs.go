package structs

import (
	"github.com/hashicorp/go-set/v3"
)

// patchValue overwrites dst with src following partial-update semantics:
// a nil src leaves dst untouched, unless force is set, in which case dst is
// reset to the zero value. The return value reports whether dst changed.
func patchValue[T comparable](dst *T, src *T, force bool) bool {
	if src == nil {
		if !force {
			return false
		}
		var zero T
		if *dst == zero {
			return false
		}
		*dst = zero
		return true
	}
	if *dst == *src {
		return false
	}
	*dst = *src
	return true
}

// patchPointer is patchValue for optional entity fields. A nil src with force
// set clears the field.
func patchPointer[T comparable](dst **T, src *T, force bool) bool {
	if src == nil {
		if !force || *dst == nil {
			return false
		}
		*dst = nil
		return true
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}

// patchSlice replaces dst with src when their contents differ as sets. Order
// is not significant for any of the slice-valued entity fields.
func patchSlice(dst *[]string, src []string, force bool) bool {
	if src == nil && !force {
		return false
	}
	if set.From(*dst).Equal(set.From(src)) {
		return false
	}
	*dst = copySliceString(src)
	return true
}

func copySliceString(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
