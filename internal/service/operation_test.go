package service

import (
	"testing"
	"time"
)

func TestParseOperation(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    Operation
		wantErr bool
	}{
		{
			name:  "plain",
			input: `{"action":"create","title":"Mall Partnership","priority":"high"}`,
			want:  Operation{Action: ActionCreate, Title: "Mall Partnership", Priority: "high"},
		},
		{
			name:  "code fence",
			input: "```json\n{\"action\":\"complete\",\"taskId\":\"abc\"}\n```",
			want:  Operation{Action: ActionComplete, TaskID: "abc"},
		},
		{
			name:  "numeric task id",
			input: `{"action":"get_status","taskId":3}`,
			want:  Operation{Action: ActionGetStatus, TaskID: "3"},
		},
		{
			name:  "surrounding text and null fields",
			input: `Sure! {"action":"ADD_REMARK","taskId":"t1","remarks":" waiting on ICICI ","title":null}`,
			want:  Operation{Action: ActionAddRemark, TaskID: "t1", Remarks: "waiting on ICICI"},
		},
		{
			name:  "missing action",
			input: `{}`,
			want:  Operation{},
		},
		{
			name:    "not json",
			input:   "I could not understand",
			wantErr: true,
		},
		{
			name:    "broken json",
			input:   `{"action": "create",`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseOperation(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("期望报错, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOperation: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseDueDate(t *testing.T) {
	for _, s := range []string{"2024-02-01", "2024-02-01T10:00:00Z", "2024-02-01T10:00:00+05:30", "2024-02-01 10:00:00"} {
		if _, ok := ParseDueDate(s); !ok {
			t.Errorf("ParseDueDate(%q) 失败", s)
		}
	}
	if _, ok := ParseDueDate("next friday"); ok {
		t.Error("自然语言日期不应解析成功")
	}
	got, _ := ParseDueDate("2024-03-15")
	if !got.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("got %v", got)
	}
}
