package engine

// fillTx is the unit of work for a single fill. Every completed mutation
// registers a compensating action; rollback runs them newest first.
type fillTx struct {
	undo []func() error
	// onUndoErr is called for each compensating action that fails.
	onUndoErr func(error)
}

func (tx *fillTx) onRollback(fn func() error) {
	tx.undo = append(tx.undo, fn)
}

func (tx *fillTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		if err := tx.undo[i](); err != nil && tx.onUndoErr != nil {
			tx.onUndoErr(err)
		}
	}
	tx.undo = nil
}
