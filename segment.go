package parjson

// planSegments picks threads-1 container OPEN events as cut points so that
// each segment starts about total/threads containers after the previous
// one, where total is the number of containers in the tree. Subtree sizes
// are unknown ahead of the walk, so after each cut the remaining containers
// are shared evenly over the targets still to find.
//
// ok is false when the tree has fewer containers than threads or a target
// turns out unreachable; the caller then writes on a single worker.
func planSegments(events []event, threads int) (cuts []int, ok bool) {
	if threads < 2 {
		return nil, false
	}
	total := 0
	for i := range events {
		if events[i].isOpen() {
			total++
		}
	}
	if total < threads {
		return nil, false
	}

	cuts = make([]int, 0, threads-1)
	targets := threads - 1
	budget := total / threads
	visited := 0
	for i := range events {
		if !events[i].isOpen() {
			continue
		}
		visited++
		budget--
		if budget > 0 {
			continue
		}
		cuts = append(cuts, i)
		if targets--; targets == 0 {
			return cuts, true
		}
		budget = (total - visited) / (targets + 1)
		if budget <= 0 {
			return nil, false
		}
	}
	return nil, false
}
