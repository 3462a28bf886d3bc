package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionTags(t *testing.T) {
	assert.Equal(t, "TRANSFER_ROLLBACK", RollbackAction(ActionTransfer))
	assert.Equal(t, "DEPOSIT_TCL", TCLAction("deposit"))
	assert.Equal(t, "WITHDRAWAL_ROLLBACK", RollbackAction("WITHDRAWAL"))
}

func TestNewEntry(t *testing.T) {
	e := NewEntry(3, ActionDeposit, "Deposited 10.00 to account 7")
	assert.Equal(t, int64(3), e.ActorID)
	assert.Equal(t, ActionDeposit, e.Action)
	assert.False(t, e.CreatedAt.IsZero())
}
