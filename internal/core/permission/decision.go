package permission

// Decision is the outcome of an access check. Missing lists the required
// codes the caller lacks; it is meant for server-side logs only.
type Decision struct {
	Allowed bool
	Missing Set
}

// Decide allows iff every required code is held. An empty requirement always
// allows. There is no "any of" variant.
func Decide(held, required Set) Decision {
	var missing Set
	for c := range required {
		if !held.Contains(c) {
			if missing == nil {
				missing = NewSet()
			}
			missing.Add(c)
		}
	}
	if missing != nil {
		return Decision{Allowed: false, Missing: missing}
	}
	return Decision{Allowed: true}
}
