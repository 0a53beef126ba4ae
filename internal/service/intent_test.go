package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"taskpilot/internal/store"
)

func TestIntentParser_ParsesModelOutput(t *testing.T) {
	llm := newFakeLLM(fakeReply{text: `{"action":"create","title":"Mall Partnership","priority":"high"}`})
	p := NewIntentParser(llm, nil, "eRupi Pilot Program")

	op := p.ParseIntent(context.Background(), "Create a new task for mall partnership")
	want := Operation{Action: ActionCreate, Title: "Mall Partnership", Priority: "high"}
	if op != want {
		t.Errorf("op = %+v, want %+v", op, want)
	}

	calls := llm.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	if !calls[0].JSON {
		t.Error("意图解析应要求 JSON 输出")
	}
	if calls[0].User != "Create a new task for mall partnership" {
		t.Errorf("user = %q", calls[0].User)
	}
	for _, action := range Actions() {
		if !strings.Contains(calls[0].System, string(action)) {
			t.Errorf("系统提示缺少动作 %s", action)
		}
	}
	if !strings.Contains(calls[0].System, "eRupi Pilot Program") {
		t.Error("系统提示缺少项目名")
	}
}

func TestIntentParser_FallsBackToListTasks(t *testing.T) {
	cases := map[string]fakeReply{
		"model error": {err: errors.New("timeout")},
		"malformed":   {text: "sorry, I can't help"},
		"broken json": {text: `{"action": `},
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			p := NewIntentParser(newFakeLLM(reply), nil, "Pilot")
			op := p.ParseIntent(context.Background(), "whatever")
			if op != (Operation{Action: ActionListTasks}) {
				t.Errorf("op = %+v", op)
			}
		})
	}
}

func TestIntentParser_IncludesCurrentTasks(t *testing.T) {
	st := store.NewMemoryStore()
	seeded := seedTasks(t, st, "Finalize two Malls", "Daily MIS from ICICI")

	llm := newFakeLLM(fakeReply{text: `{"action":"list_tasks"}`})
	p := NewIntentParser(llm, st, "Pilot")
	p.ParseIntent(context.Background(), "complete task 2")

	system := llm.Calls()[0].System
	if !strings.Contains(system, "2. "+seeded[1].ID+" | Daily MIS from ICICI") {
		t.Errorf("系统提示缺少任务列表:\n%s", system)
	}
}
