package utils

// UniqueUint removes duplicate values from a slice of uints, preserving order.
func UniqueUint(slice []uint) []uint {
	keys := make(map[uint]bool)
	list := []uint{}
	for _, entry := range slice {
		if !keys[entry] {
			keys[entry] = true
			list = append(list, entry)
		}
	}
	return list
}

// ToUintSet builds a membership map from a slice of uints.
func ToUintSet(slice []uint) map[uint]bool {
	set := make(map[uint]bool, len(slice))
	for _, entry := range slice {
		set[entry] = true
	}
	return set
}
