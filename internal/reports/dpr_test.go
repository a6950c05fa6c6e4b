package reports

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"construction-site-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func sampleRecords() []models.MaterialRecord {
	return []models.MaterialRecord{
		{
			MatCode: "STL-02", MatName: "Steel bar", QuantityAdded: 50, Quantity: 30, Amount: 1200.10,
			AddedBy: "ravi", Date: day(2025, time.June, 3),
			UsageHistory: []models.UsageEntry{
				{TakenBy: "asha", Quantity: 15, Date: day(2025, time.June, 10)},
				{TakenBy: "asha", Quantity: 5, Date: day(2025, time.July, 1)},
			},
		},
		{
			MatCode: "CEM-01", MatName: "Cement", QuantityAdded: 100, Quantity: 100, Amount: 0.2,
			AddedBy: "ravi", Date: day(2025, time.June, 20),
		},
		{
			MatCode: "CEM-01", MatName: "Cement", QuantityAdded: 40, Quantity: 10, Amount: 0.1,
			AddedBy: "kiran", Date: day(2025, time.May, 28),
			UsageHistory: []models.UsageEntry{{TakenBy: "asha", Quantity: 30, Date: day(2025, time.June, 1)}},
		},
	}
}

func TestBuildMaterialReport(t *testing.T) {
	r := BuildMaterialReport("p1", sampleRecords(), 6, 2025)

	if len(r.Materials) != 2 {
		t.Fatalf("len(Materials) = %d, want 2", len(r.Materials))
	}
	cem, stl := r.Materials[0], r.Materials[1]
	if cem.MatCode != "CEM-01" || stl.MatCode != "STL-02" {
		t.Fatalf("codes = %s, %s, want sorted CEM-01, STL-02", cem.MatCode, stl.MatCode)
	}

	tests := []struct {
		name         string
		line         MaterialLine
		additions    int
		consumptions int
		remaining    float64
		amount       string
	}{
		{"cement", cem, 1, 1, 110, "0.2"},
		{"steel", stl, 1, 1, 30, "1200.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.line.Additions) != tt.additions {
				t.Errorf("additions = %d, want %d", len(tt.line.Additions), tt.additions)
			}
			if len(tt.line.Consumptions) != tt.consumptions {
				t.Errorf("consumptions = %d, want %d", len(tt.line.Consumptions), tt.consumptions)
			}
			if tt.line.Remaining != tt.remaining {
				t.Errorf("remaining = %v, want %v", tt.line.Remaining, tt.remaining)
			}
			if tt.line.Amount.String() != tt.amount {
				t.Errorf("amount = %s, want %s", tt.line.Amount, tt.amount)
			}
		})
	}

	if r.TotalAmount.String() != "1200.3" {
		t.Errorf("TotalAmount = %s, want 1200.3", r.TotalAmount)
	}
}

func TestBuildMaterialReport_EmptyJSON(t *testing.T) {
	b, err := json.Marshal(BuildMaterialReport("p1", nil, 6, 2025))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"materials":[]`) || !strings.Contains(string(b), `"totalAmount":"0"`) {
		t.Errorf("json = %s", b)
	}
}

func TestAttendanceReports(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	employees := []models.Employee{{ID: a, Name: "Asha"}, {ID: b, Name: "Kiran"}}
	attendance := []models.Attendance{
		{EmployeeID: a.Hex(), Status: models.AttendancePresent, Date: "2025-06-03", Work: "shuttering"},
		{EmployeeID: a.Hex(), Status: models.AttendanceAbsent, Date: "2025-06-02"},
		{EmployeeID: a.Hex(), Status: models.AttendancePresent, Date: "2025-05-30"},
		{EmployeeID: "ghost", Status: models.AttendancePresent, Date: "2025-06-02"},
	}

	r := BuildAttendanceReport("p1", employees, attendance, 6, 2025)
	if len(r.Employees) != 2 {
		t.Fatalf("len(Employees) = %d, want 2", len(r.Employees))
	}
	asha := r.Employees[0]
	if len(asha.Attendance) != 2 || asha.Attendance[0].Date != "2025-06-02" {
		t.Errorf("asha attendance = %+v, want two June rows oldest first", asha.Attendance)
	}
	if asha.Attendance[1].DailyWork != "shuttering" {
		t.Errorf("DailyWork = %q, want shuttering", asha.Attendance[1].DailyWork)
	}
	if asha.WorkedDays != 1 {
		t.Errorf("WorkedDays = %d, want 1", asha.WorkedDays)
	}
	if len(r.Employees[1].Attendance) != 0 {
		t.Errorf("kiran attendance = %+v, want none", r.Employees[1].Attendance)
	}

	grouped := GroupByEmployee(employees, attendance)
	if len(grouped) != 2 || len(grouped[0].Records) != 3 || grouped[0].WorkedDays != 2 {
		t.Errorf("GroupByEmployee() = %+v", grouped)
	}
	if grouped[1].Records == nil {
		t.Error("GroupByEmployee() records = nil, want empty slice")
	}
}

func TestWeeklyAttendance(t *testing.T) {
	rows := []AttendanceRow{
		{Date: "2025-06-02"}, // Monday
		{Date: "2025-06-02"},
		{Date: "2025-06-08"}, // Sunday
		{Date: "not a date"},
	}
	want := [7]int{2, 0, 0, 0, 0, 0, 1}
	if got := WeeklyAttendance(rows); got != want {
		t.Errorf("WeeklyAttendance() = %v, want %v", got, want)
	}
}

func TestMonthlyAdditions(t *testing.T) {
	got := MonthlyAdditions(sampleRecords(), 2025)
	if got[4] != 40 || got[5] != 150 {
		t.Errorf("MonthlyAdditions() May/June = %v/%v, want 40/150", got[4], got[5])
	}
	if got := MonthlyAdditions(sampleRecords(), 2024); got != ([12]float64{}) {
		t.Errorf("MonthlyAdditions(2024) = %v, want zeros", got)
	}
}

func TestBuildStats(t *testing.T) {
	a := primitive.NewObjectID()
	att := BuildAttendanceReport("p1", []models.Employee{{ID: a}}, []models.Attendance{
		{EmployeeID: a.Hex(), Status: models.AttendancePresent, Date: "2025-06-03"},
	}, 6, 2025)
	records := sampleRecords()
	s := BuildStats(att, BuildMaterialReport("p1", records, 6, 2025), records)

	if s.TotalEmployees != 1 || s.WeekStats[1] != 1 {
		t.Errorf("attendance stats = %+v", s)
	}
	if s.TotalMaterials != 4 {
		t.Errorf("TotalMaterials = %d, want 4", s.TotalMaterials)
	}
	if s.MonthStats[5] != 150 {
		t.Errorf("MonthStats[June] = %v, want 150", s.MonthStats[5])
	}
}
