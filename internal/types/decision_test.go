package types

import (
	"testing"

	"github.com/google/uuid"
)

func TestDecisionList_PrependKeepsNewestFirst(t *testing.T) {
	var list DecisionList
	first := Decision{ID: uuid.New(), TypeID: DecisionTypeRefused}
	second := Decision{ID: uuid.New(), TypeID: DecisionTypeRevisionRequest}

	list = list.Prepend(first)
	list = list.Prepend(second)

	if len(list) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(list))
	}
	if list[0].ID != second.ID {
		t.Fatalf("expected newest decision at index 0, got %s", list[0].ID)
	}
	if list[1].ID != first.ID {
		t.Fatalf("expected oldest decision at index 1, got %s", list[1].ID)
	}
}

func TestDecisionList_PrependDoesNotMutateOriginal(t *testing.T) {
	base := DecisionList{{ID: uuid.New(), TypeID: DecisionTypeAccepted}}
	grown := base.Prepend(Decision{ID: uuid.New(), TypeID: DecisionTypeCanceled})

	if len(base) != 1 {
		t.Fatalf("original list mutated: len=%d", len(base))
	}
	if len(grown) != 2 {
		t.Fatalf("expected grown list of 2, got %d", len(grown))
	}
}

func TestDecisionList_Latest(t *testing.T) {
	var empty DecisionList
	if empty.Latest() != nil {
		t.Fatalf("expected nil latest on empty ledger")
	}

	list := empty.Prepend(Decision{ID: uuid.New(), TypeID: DecisionTypeRefused})
	list = list.Prepend(Decision{ID: uuid.New(), TypeID: DecisionTypeAccepted})

	latest := list.Latest()
	if latest == nil || latest.TypeID != DecisionTypeAccepted {
		t.Fatalf("expected latest=accepted, got %+v", latest)
	}
}

func TestDecisionList_HasType(t *testing.T) {
	list := DecisionList{
		{ID: uuid.New(), TypeID: DecisionTypeReturned},
		{ID: uuid.New(), TypeID: DecisionTypeRefused},
	}
	if !list.HasType(DecisionTypeRefused) {
		t.Fatalf("expected HasType(refused)=true")
	}
	if list.HasType(DecisionTypeAccepted) {
		t.Fatalf("expected HasType(accepted)=false")
	}
}
