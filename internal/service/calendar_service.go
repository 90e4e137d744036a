package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cluckhub/cluckhub/internal/domain"
)

// CalendarService renders a farm's reminders and shed placement dates as an
// iCalendar document. It keeps no state of its own: one read per slice, one
// VEVENT per dated entry.
type CalendarService struct {
	farmRepo domain.FarmRepository
	dataRepo domain.FarmDataRepository
}

func NewCalendarService(farmRepo domain.FarmRepository, dataRepo domain.FarmDataRepository) *CalendarService {
	return &CalendarService{
		farmRepo: farmRepo,
		dataRepo: dataRepo,
	}
}

// Export renders the calendar for a farm the caller belongs to.
func (s *CalendarService) Export(ctx context.Context, email, farmID string) (string, error) {
	farm, err := s.farmRepo.GetFarmByID(ctx, farmID)
	if err != nil {
		return "", err
	}
	if farm.MemberRole(email) == "" {
		return "", domain.NewPermissionError("", "", "not a member of this farm")
	}

	remindersDoc, err := s.dataRepo.GetFarmData(ctx, farmID, "reminders")
	if err != nil {
		return "", err
	}
	reminders, err := domain.ParseReminders(remindersDoc)
	if err != nil {
		return "", domain.NewValidationError("reminders document is not a list")
	}

	shedsDoc, err := s.dataRepo.GetFarmData(ctx, farmID, "sheds")
	if err != nil {
		return "", err
	}
	sheds, err := domain.ParseSheds(shedsDoc)
	if err != nil {
		return "", domain.NewValidationError("sheds document is not a list")
	}

	return renderCalendar(farm, reminders, sheds), nil
}

func renderCalendar(farm *domain.Farm, reminders []domain.Reminder, sheds []domain.Shed) string {
	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:-//Cluck Hub//Farm Calendar//EN")
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "X-WR-CALNAME:"+escapeText(farm.Name))

	stamp := time.Now().UTC().Format("20060102T150405Z")

	for _, r := range reminders {
		date, ok := icsDate(r.Date)
		if !ok {
			continue
		}
		writeLine(&b, "BEGIN:VEVENT")
		writeLine(&b, fmt.Sprintf("UID:reminder-%s-%s@cluckhub", farm.ID, r.ID))
		writeLine(&b, "DTSTAMP:"+stamp)
		writeLine(&b, "DTSTART;VALUE=DATE:"+date)
		writeLine(&b, "SUMMARY:"+escapeText(r.Title))
		if r.Notes != "" {
			writeLine(&b, "DESCRIPTION:"+escapeText(r.Notes))
		}
		writeLine(&b, "END:VEVENT")
	}

	for _, shed := range sheds {
		date, ok := icsDate(shed.PlacementDate)
		if !ok {
			continue
		}
		writeLine(&b, "BEGIN:VEVENT")
		writeLine(&b, fmt.Sprintf("UID:shed-%s-%s@cluckhub", farm.ID, shed.ID))
		writeLine(&b, "DTSTAMP:"+stamp)
		writeLine(&b, "DTSTART;VALUE=DATE:"+date)
		writeLine(&b, "SUMMARY:"+escapeText("Placement: "+shed.Name))
		writeLine(&b, "END:VEVENT")
	}

	writeLine(&b, "END:VCALENDAR")
	return b.String()
}

// writeLine terminates content lines with CRLF as RFC 5545 requires.
func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}

// icsDate converts a YYYY-MM-DD entry date into the compact DATE form.
func icsDate(date string) (string, bool) {
	parsed, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return "", false
	}
	return parsed.Format("20060102"), true
}

func escapeText(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return replacer.Replace(text)
}
