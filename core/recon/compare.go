package recon

import "inventory-sync/core/utils"

// attrsEqual reports whether a persisted row already carries every desired
// value, in which case the match is a no-op and no update is issued. Values
// coming back from the store keep driver types (int64, []byte, 0/1 booleans),
// so comparison is normalized, not strict.
func attrsEqual(desired, row Attributes) bool {
	for k, want := range desired {
		got, ok := row[k]
		if !ok {
			return false
		}
		if !valueEqual(want, got) {
			return false
		}
	}
	return true
}

func valueEqual(want, got any) bool {
	if want == nil || got == nil {
		return want == nil && got == nil
	}
	if b, ok := want.(bool); ok {
		return utils.ToBool(got) == b
	}
	if b, ok := got.(bool); ok {
		return utils.ToBool(want) == b
	}
	return utils.ToString(want) == utils.ToString(got)
}
