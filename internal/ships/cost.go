package ships

// FleetCost returns the command power fielded by counts. Entries beyond the
// catalog are ignored and negative counts contribute nothing.
func FleetCost(counts []int) int {
	total := 0
	for i, n := range counts {
		if i >= Count || n <= 0 {
			continue
		}
		total += n * catalog[i].CP
	}
	return total
}

// FleetHP returns the aggregate hit points fielded by counts.
func FleetHP(counts []int) int {
	total := 0
	for i, n := range counts {
		if i >= Count || n <= 0 {
			continue
		}
		total += n * catalog[i].HP
	}
	return total
}

// ShipsFromHP converts an aggregate HP pool back to a ship count, rounding a
// partially damaged ship up. Non-positive pools hold no ships.
func ShipsFromHP(idx Index, hp int) int {
	if hp <= 0 {
		return 0
	}
	unit := catalog[idx].HP
	return (hp + unit - 1) / unit
}
