package inventory

import "reservesweep/lib/checkpoint"

// SelectPending diffs the spreadsheet inventory against the checkpoint
// log and returns the SKUs that still need processing, in spreadsheet
// row order. An item is pending when its reserved unit count is positive
// and the first checkpoint record for its SKU (if any) carries a
// different unit count. Pure function of its inputs, so rerunning it
// after a crash re-derives the same queue minus finished SKUs.
func SelectPending(items []Item, completed []checkpoint.Record) []Item {
	var pending []Item
	for _, item := range items {
		if item.ReservedUnits <= 0 {
			continue
		}

		done := false
		for _, rec := range completed {
			if rec.Sku != item.Sku {
				continue
			}
			// first record for the SKU wins
			done = rec.Units == item.ReservedUnits
			break
		}
		if done {
			continue
		}
		pending = append(pending, item)
	}
	return pending
}
