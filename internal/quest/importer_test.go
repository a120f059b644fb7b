package quest

import (
	"strings"
	"testing"
)

func TestBuildQueryNoFilters(t *testing.T) {
	query, args := buildQuery(ImportOptions{})
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
	for _, col := range []string{"ID", "LogTitle", "QuestDescription", "QuestSortID"} {
		if !strings.Contains(query, col) {
			t.Errorf("query missing column %s", col)
		}
	}
	if !strings.Contains(query, "ORDER BY ID") {
		t.Error("query missing ordering")
	}
	if strings.Contains(query, "LIMIT") {
		t.Error("unexpected LIMIT without a limit option")
	}
}

func TestBuildQueryAllFilters(t *testing.T) {
	query, args := buildQuery(ImportOptions{
		QuestID:       12345,
		MinLevel:      10,
		MaxLevel:      20,
		Zone:          12,
		MainStoryOnly: true,
		Limit:         50,
	})

	clauses := []string{
		"AND ID = ?",
		"AND QuestLevel >= ?",
		"AND QuestLevel <= ?",
		"AND QuestSortID = ?",
		"AND QuestSortID < 0",
		"LIMIT ?",
	}
	for _, c := range clauses {
		if !strings.Contains(query, c) {
			t.Errorf("query missing clause %q", c)
		}
	}

	// Arg order must match clause order. MainStoryOnly binds no arg.
	want := []any{12345, 10, 20, 12, 50}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %v, want %v", i, args[i], want[i])
		}
	}
}

func TestBuildQueryMainStoryBindsNoArg(t *testing.T) {
	query, args := buildQuery(ImportOptions{MainStoryOnly: true})
	if !strings.Contains(query, "QuestSortID < 0") {
		t.Error("main-story filter missing")
	}
	if len(args) != 0 {
		t.Errorf("main-story filter must not bind args, got %v", args)
	}
}

func TestMapSort(t *testing.T) {
	var zoneQuest Quest
	mapSort(&zoneQuest, 12)
	if zoneQuest.Zone != "12" || zoneQuest.MainStory {
		t.Errorf("positive sort id: got %+v", zoneQuest)
	}

	var storyQuest Quest
	mapSort(&storyQuest, -382)
	if !storyQuest.MainStory || storyQuest.Zone != "" {
		t.Errorf("negative sort id: got %+v", storyQuest)
	}

	var plain Quest
	mapSort(&plain, 0)
	if plain.MainStory || plain.Zone != "" {
		t.Errorf("zero sort id: got %+v", plain)
	}
}
