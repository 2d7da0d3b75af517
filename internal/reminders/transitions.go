package reminders

import "github.com/ukydev/vehicle-upkeep/internal/models"

// legalTransitions is the explicit state machine for reminder status.
// done and dismissed are terminal; snoozing keeps a reminder active
// (snoozing shifts the due date instead of changing status), but the
// snoozed state is still accepted as a source so documents written by
// older versions keep working.
var legalTransitions = map[models.ReminderStatus]map[models.ReminderStatus]bool{
	models.ReminderActive: {
		models.ReminderDone:      true,
		models.ReminderDismissed: true,
		models.ReminderSnoozed:   true,
	},
	models.ReminderSnoozed: {
		models.ReminderActive:    true,
		models.ReminderDone:      true,
		models.ReminderDismissed: true,
	},
	models.ReminderDone:      {},
	models.ReminderDismissed: {},
}

// canTransition reports whether the move from one status to another is
// legal. Attempts out of a terminal state fail fast at the caller.
func canTransition(from, to models.ReminderStatus) bool {
	return legalTransitions[from][to]
}
