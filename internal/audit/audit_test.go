package audit

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"ledger/internal/models"
	"ledger/internal/testutil"
)

func TestRevertDescription(t *testing.T) {
	t.Run("prefixes", func(t *testing.T) {
		if got := RevertDescription("Groceries"); got != "REVERT: Groceries" {
			t.Errorf("expected %q, got %q", "REVERT: Groceries", got)
		}
	})

	t.Run("empty description", func(t *testing.T) {
		if got := RevertDescription(""); got != "REVERT: " {
			t.Errorf("expected bare prefix, got %q", got)
		}
	})

	t.Run("fits the column", func(t *testing.T) {
		got := RevertDescription(strings.Repeat("é", 200))
		if len(got) > models.MaxDescriptionLen {
			t.Errorf("expected at most %d bytes, got %d", models.MaxDescriptionLen, len(got))
		}
		if !utf8.ValidString(got) {
			t.Error("truncation split a rune")
		}
		if !strings.HasPrefix(got, RevertPrefix) {
			t.Error("prefix lost")
		}
	})
}

func TestCheckRevertable(t *testing.T) {
	ordinary := &models.Transaction{Kind: models.TransactionKindOrdinary}
	revert := &models.Transaction{Kind: models.TransactionKindRevert}

	t.Run("ordinary without revert", func(t *testing.T) {
		testutil.AssertNoError(t, CheckRevertable(ordinary, nil, 0))
	})

	t.Run("already reverted", func(t *testing.T) {
		testutil.AssertAppError(t, CheckRevertable(ordinary, revert, 1), "ALREADY_REVERTED")
	})

	t.Run("revert row purged but logged", func(t *testing.T) {
		testutil.AssertAppError(t, CheckRevertable(ordinary, nil, 1), "ALREADY_REVERTED")
	})

	t.Run("revert of a revert", func(t *testing.T) {
		testutil.AssertAppError(t, CheckRevertable(revert, nil, 0), "INVALID_REVERT_TARGET")
	})
}

func TestNewRevert(t *testing.T) {
	original := &models.Transaction{
		Base:        models.Base{ID: 7},
		UserID:      "alice",
		BalanceID:   3,
		CategoryID:  4,
		Kind:        models.TransactionKindOrdinary,
		Amount:      200,
		Description: "Groceries",
		Status:      models.TransactionStatusPending,
		Trash:       true,
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	revert := NewRevert(original, now)

	if revert.Kind != models.TransactionKindRevert {
		t.Errorf("expected revert kind, got %s", revert.Kind)
	}
	if revert.RevertedID == nil || *revert.RevertedID != 7 {
		t.Errorf("expected reverted id 7, got %v", revert.RevertedID)
	}
	if revert.Amount != 200 || revert.BalanceID != 3 || revert.CategoryID != 4 || revert.UserID != "alice" {
		t.Errorf("fields not copied: %+v", revert)
	}
	if revert.Description != "REVERT: Groceries" {
		t.Errorf("unexpected description %q", revert.Description)
	}
	if revert.Trash || revert.Status != models.TransactionStatusCleared {
		t.Errorf("revert must be a fresh cleared record, got trash=%v status=%s", revert.Trash, revert.Status)
	}
	if !revert.Date.Equal(now) {
		t.Errorf("expected date %v, got %v", now, revert.Date)
	}

	original.ID = 8
	if *revert.RevertedID != 7 {
		t.Error("revert must not alias the original's id")
	}
}

func TestEntry(t *testing.T) {
	t.Run("encodes changes", func(t *testing.T) {
		entry, err := Entry("alice", ActionTransactionTrashed, ResourceTransaction, 9, map[string]any{"trash": true})
		testutil.AssertNoError(t, err)

		if entry.Action != ActionTransactionTrashed || entry.ResourceType != ResourceTransaction || entry.ResourceID != 9 {
			t.Errorf("unexpected entry %+v", entry)
		}
		var changes map[string]any
		if err := json.Unmarshal([]byte(entry.Changes), &changes); err != nil {
			t.Fatalf("changes are not JSON: %v", err)
		}
		if changes["trash"] != true {
			t.Errorf("expected trash=true, got %v", changes["trash"])
		}
	})

	t.Run("no changes", func(t *testing.T) {
		entry, err := Entry("alice", ActionBalanceDeleted, ResourceBalance, 1, nil)
		testutil.AssertNoError(t, err)
		if entry.Changes != "" {
			t.Errorf("expected empty changes, got %q", entry.Changes)
		}
	})

	t.Run("unencodable changes", func(t *testing.T) {
		_, err := Entry("alice", ActionBalanceDeleted, ResourceBalance, 1, map[string]any{"bad": make(chan int)})
		if err == nil {
			t.Error("expected marshal error")
		}
	})
}

func TestSnapshot(t *testing.T) {
	revertedID := uint(2)
	snap := Snapshot(&models.Transaction{Base: models.Base{ID: 5}, Amount: 300, RevertedID: &revertedID})

	if snap["id"] != uint(5) || snap["amount"] != int64(300) || snap["reverted_id"] != uint(2) {
		t.Errorf("unexpected snapshot %v", snap)
	}
}

func TestNetEffect(t *testing.T) {
	txs := []models.Transaction{
		{Kind: models.TransactionKindOrdinary, Amount: 200},
		{Kind: models.TransactionKindOrdinary, Amount: 50, Trash: true},
		{Kind: models.TransactionKindRevert, Amount: 200},
	}

	if got := NetEffect(1000, txs); got != 950 {
		t.Errorf("expected 950, got %d", got)
	}
	if got := NetEffect(1000, nil); got != 1000 {
		t.Errorf("expected 1000 with no transactions, got %d", got)
	}
}

func TestPurgedEffect(t *testing.T) {
	deleted := func(tx *models.Transaction) models.AuditLog {
		t.Helper()
		entry, err := Entry(tx.UserID, ActionTransactionDeleted, ResourceTransaction, tx.ID, Snapshot(tx))
		testutil.AssertNoError(t, err)
		return *entry
	}

	t.Run("sums snapshots of the balance", func(t *testing.T) {
		revertOf := uint(1)
		entries := []models.AuditLog{
			deleted(&models.Transaction{Base: models.Base{ID: 1}, BalanceID: 3, Kind: models.TransactionKindOrdinary, Amount: 200}),
			deleted(&models.Transaction{Base: models.Base{ID: 2}, BalanceID: 3, Kind: models.TransactionKindRevert, Amount: 50, RevertedID: &revertOf}),
			deleted(&models.Transaction{Base: models.Base{ID: 4}, BalanceID: 9, Kind: models.TransactionKindOrdinary, Amount: 999}),
			{Action: ActionTransactionTrashed, Changes: `{"trash":true}`},
		}

		got, err := PurgedEffect(3, entries)
		testutil.AssertNoError(t, err)
		if got != -150 {
			t.Errorf("expected -150, got %d", got)
		}
	})

	t.Run("no entries", func(t *testing.T) {
		got, err := PurgedEffect(3, nil)
		testutil.AssertNoError(t, err)
		if got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
	})

	t.Run("corrupt snapshot", func(t *testing.T) {
		_, err := PurgedEffect(3, []models.AuditLog{{Action: ActionTransactionDeleted, Changes: "{"}})
		if err == nil {
			t.Error("expected decode error")
		}
	})
}
