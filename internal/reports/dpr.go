// Package reports builds the daily progress report (DPR) views of a project:
// monthly material movements, attendance and the dashboard statistics.
package reports

import (
	"sort"
	"time"

	"construction-site-api-server/internal/models"

	"github.com/shopspring/decimal"
)

type Addition struct {
	Date     time.Time       `json:"date"`
	Quantity float64         `json:"quantity"`
	AddedBy  string          `json:"addedBy"`
	Amount   decimal.Decimal `json:"amount"`
}

type Consumption struct {
	Date       time.Time `json:"date"`
	Quantity   float64   `json:"quantity"`
	ConsumedBy string    `json:"consumedBy"`
}

// MaterialLine is the month's activity for one material code. Remaining is
// the stock on site now, not at the end of the month.
type MaterialLine struct {
	MatCode      string          `json:"matCode"`
	MatName      string          `json:"matName"`
	Additions    []Addition      `json:"additions"`
	Consumptions []Consumption   `json:"consumptions"`
	Remaining    float64         `json:"remaining"`
	Amount       decimal.Decimal `json:"amount"`
}

type MaterialReport struct {
	ProjectID   string          `json:"projectId"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Materials   []MaterialLine  `json:"materials"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func inMonth(t time.Time, month, year int) bool {
	return t.Year() == year && int(t.Month()) == month
}

// BuildMaterialReport groups records by material code, sorted by code. Every
// code present in records gets a line, even without activity in the month.
func BuildMaterialReport(projectID string, records []models.MaterialRecord, month, year int) MaterialReport {
	report := MaterialReport{
		ProjectID:   projectID,
		Month:       month,
		Year:        year,
		Materials:   []MaterialLine{},
		TotalAmount: decimal.Zero,
	}

	lines := map[string]*MaterialLine{}
	var codes []string
	for _, rec := range records {
		line, ok := lines[rec.MatCode]
		if !ok {
			line = &MaterialLine{
				MatCode:      rec.MatCode,
				MatName:      rec.MatName,
				Additions:    []Addition{},
				Consumptions: []Consumption{},
				Amount:       decimal.Zero,
			}
			lines[rec.MatCode] = line
			codes = append(codes, rec.MatCode)
		}
		if line.MatName == "" {
			line.MatName = rec.MatName
		}
		line.Remaining += rec.Quantity

		added := rec.Date
		if added.IsZero() {
			added = rec.CreatedAt
		}
		if inMonth(added, month, year) {
			amount := decimal.NewFromFloat(rec.Amount)
			line.Additions = append(line.Additions, Addition{
				Date:     added,
				Quantity: rec.QuantityAdded,
				AddedBy:  rec.AddedBy,
				Amount:   amount,
			})
			line.Amount = line.Amount.Add(amount)
		}
		for _, u := range rec.UsageHistory {
			if inMonth(u.Date, month, year) {
				line.Consumptions = append(line.Consumptions, Consumption{
					Date:       u.Date,
					Quantity:   u.Quantity,
					ConsumedBy: u.TakenBy,
				})
			}
		}
	}

	sort.Strings(codes)
	for _, code := range codes {
		line := lines[code]
		sort.SliceStable(line.Additions, func(i, j int) bool { return line.Additions[i].Date.Before(line.Additions[j].Date) })
		sort.SliceStable(line.Consumptions, func(i, j int) bool { return line.Consumptions[i].Date.Before(line.Consumptions[j].Date) })
		report.Materials = append(report.Materials, *line)
		report.TotalAmount = report.TotalAmount.Add(line.Amount)
	}
	return report
}

// AttendanceRow is one day of an employee in the DPR.
type AttendanceRow struct {
	Date      string `json:"date"`
	InTime    string `json:"inTime"`
	OutTime   string `json:"outTime"`
	DailyWork string `json:"dailyWork"`
	Status    string `json:"status"`
}

type EmployeeAttendance struct {
	Employee   models.Employee `json:"employee"`
	Attendance []AttendanceRow `json:"attendance"`
	WorkedDays int             `json:"workedDays"`
}

type AttendanceReport struct {
	ProjectID string               `json:"projectId"`
	Month     int                  `json:"month"`
	Year      int                  `json:"year"`
	Employees []EmployeeAttendance `json:"employees"`
}

func attendanceInMonth(a models.Attendance, month, year int) bool {
	d, err := time.Parse("2006-01-02", a.Date)
	return err == nil && inMonth(d, month, year)
}

// BuildAttendanceReport lists every employee with their attendance in the
// month, oldest day first.
func BuildAttendanceReport(projectID string, employees []models.Employee, attendance []models.Attendance, month, year int) AttendanceReport {
	byEmployee := map[string][]models.Attendance{}
	for _, a := range attendance {
		if attendanceInMonth(a, month, year) {
			byEmployee[a.EmployeeID] = append(byEmployee[a.EmployeeID], a)
		}
	}

	report := AttendanceReport{ProjectID: projectID, Month: month, Year: year, Employees: []EmployeeAttendance{}}
	for _, e := range employees {
		records := byEmployee[e.ID.Hex()]
		sort.SliceStable(records, func(i, j int) bool { return records[i].Date < records[j].Date })

		rows := make([]AttendanceRow, 0, len(records))
		for _, a := range records {
			rows = append(rows, AttendanceRow{
				Date:      a.Date,
				InTime:    a.InTime,
				OutTime:   a.OutTime,
				DailyWork: a.Work,
				Status:    a.Status,
			})
		}
		report.Employees = append(report.Employees, EmployeeAttendance{
			Employee:   e,
			Attendance: rows,
			WorkedDays: WorkedDays(records),
		})
	}
	return report
}

// GroupedAttendance is every attendance record of one employee.
type GroupedAttendance struct {
	EmployeeID string              `json:"employeeId"`
	Name       string              `json:"name"`
	Records    []models.Attendance `json:"records"`
	WorkedDays int                 `json:"workedDays"`
}

// GroupByEmployee groups attendance per employee, keeping employee order.
// Records of unknown employees are dropped.
func GroupByEmployee(employees []models.Employee, attendance []models.Attendance) []GroupedAttendance {
	byEmployee := map[string][]models.Attendance{}
	for _, a := range attendance {
		byEmployee[a.EmployeeID] = append(byEmployee[a.EmployeeID], a)
	}
	out := make([]GroupedAttendance, 0, len(employees))
	for _, e := range employees {
		records := byEmployee[e.ID.Hex()]
		if records == nil {
			records = []models.Attendance{}
		}
		out = append(out, GroupedAttendance{
			EmployeeID: e.ID.Hex(),
			Name:       e.Name,
			Records:    records,
			WorkedDays: WorkedDays(records),
		})
	}
	return out
}

// WorkedDays counts the Present records.
func WorkedDays(records []models.Attendance) int {
	n := 0
	for _, r := range records {
		if r.Status == models.AttendancePresent {
			n++
		}
	}
	return n
}

type Stats struct {
	WeekStats      [7]int      `json:"weekStats"`
	MonthStats     [12]float64 `json:"monthStats"`
	TotalEmployees int         `json:"totalEmployees"`
	TotalMaterials int         `json:"totalMaterials"`
}

// WeeklyAttendance counts attendance rows per weekday, Monday first.
// Rows with an unparsable date are skipped.
func WeeklyAttendance(rows []AttendanceRow) [7]int {
	var counts [7]int
	for _, r := range rows {
		d, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			continue
		}
		// time.Sunday is 0; shift so Monday lands at index 0.
		counts[(int(d.Weekday())+6)%7]++
	}
	return counts
}

// MonthlyAdditions sums the quantity added per calendar month of year.
func MonthlyAdditions(records []models.MaterialRecord, year int) [12]float64 {
	var months [12]float64
	for _, rec := range records {
		added := rec.Date
		if added.IsZero() {
			added = rec.CreatedAt
		}
		if added.Year() == year {
			months[added.Month()-1] += rec.QuantityAdded
		}
	}
	return months
}

// BuildStats summarises the month's reports for the dashboard charts.
func BuildStats(att AttendanceReport, mat MaterialReport, records []models.MaterialRecord) Stats {
	var rows []AttendanceRow
	for _, e := range att.Employees {
		rows = append(rows, e.Attendance...)
	}
	movements := 0
	for _, m := range mat.Materials {
		movements += len(m.Additions) + len(m.Consumptions)
	}
	return Stats{
		WeekStats:      WeeklyAttendance(rows),
		MonthStats:     MonthlyAdditions(records, mat.Year),
		TotalEmployees: len(rows),
		TotalMaterials: movements,
	}
}
