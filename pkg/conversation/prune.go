package conversation

// Prune returns a conversation in which at most keepN screenshots remain,
// dropping the chronologically oldest image entries first. Old screenshots
// lose value once the screen has changed, and capping the image count bounds
// request payload size without losing any textual history.
//
// The input is never mutated: turns that lose images are rebuilt, everything
// else is shared with the input. Text entries co-located with a stripped
// image are kept, and a tool result whose content becomes empty stays in
// place with an empty content list. Pruning an already-pruned conversation
// with the same keepN is a no-op.
func Prune(conv Conversation, keepN int) Conversation {
	if keepN < 0 {
		keepN = 0
	}

	excess := conv.CountImages() - keepN
	if excess <= 0 {
		return conv
	}

	pruned := make(Conversation, len(conv))
	copy(pruned, conv)

	removed := 0
	for i := range pruned {
		if removed >= excess {
			break
		}
		turn := pruned[i]

		var content []Block
		changed := false
		for _, block := range turn.Content {
			result, ok := block.(ToolResult)
			if !ok {
				content = append(content, block)
				continue
			}
			stripped, n := stripImages(result, excess-removed)
			removed += n
			changed = changed || n > 0
			content = append(content, stripped)
		}

		if changed {
			pruned[i] = Turn{Role: turn.Role, Content: content}
		}
	}

	return pruned
}

// stripImages removes up to limit image entries from a tool result,
// preserving the order of everything it keeps. It returns the rebuilt block
// and the number of images removed.
func stripImages(result ToolResult, limit int) (ToolResult, int) {
	removed := 0
	kept := make([]ResultContent, 0, len(result.Content))
	for _, entry := range result.Content {
		if entry.IsImage() && removed < limit {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	if removed == 0 {
		return result, 0
	}
	return ToolResult{
		ToolUseID: result.ToolUseID,
		IsError:   result.IsError,
		Content:   kept,
	}, removed
}
