package solver

// Snapshot is one improving result of a search.
type Snapshot struct {
	AssignedGroups []string `json:"assigned-groups"`
	TotalCost      int      `json:"total-cost"`
}

func newSnapshot(a Assignment, cost int) Snapshot {
	return Snapshot{AssignedGroups: a.Groups(), TotalCost: cost}
}
