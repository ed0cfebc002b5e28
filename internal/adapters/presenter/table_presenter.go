package presenter

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mikey/applytrack/internal/core"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	summaryStyle = lipgloss.NewStyle().Bold(true)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	statusColors = map[core.Status]lipgloss.Color{
		core.StatusApplied:    lipgloss.Color("245"),
		core.StatusInterview:  lipgloss.Color("39"),
		core.StatusAssessment: lipgloss.Color("214"),
		core.StatusOffer:      lipgloss.Color("42"),
		core.StatusRejected:   lipgloss.Color("196"),
	}
)

const statusColumn = 3

// TablePresenter renders the summary strip and the record table
type TablePresenter struct {
	out io.Writer
}

// NewTablePresenter creates a presenter writing to out
func NewTablePresenter(out io.Writer) *TablePresenter {
	return &TablePresenter{out: out}
}

// Present writes the summary and one row per record
func (p *TablePresenter) Present(_ context.Context, result *core.RunResult) error {
	if result == nil || result.Found == 0 {
		_, err := fmt.Fprintln(p.out, core.ErrNoMessages.Error())
		return err
	}

	if _, err := fmt.Fprintln(p.out, summaryStyle.Render(SummaryLine(result.Summary))); err != nil {
		return err
	}

	if len(result.Records) == 0 {
		_, err := fmt.Fprintf(p.out, "None of the %d matching emails could be tracked (%d skipped, %d ignored).\n",
			result.Found, result.Skipped, result.Ignored)
		return err
	}

	rows := make([][]string, 0, len(result.Records))
	for _, r := range result.Records {
		rows = append(rows, []string{r.Date, r.Company, r.Role, string(r.Status), r.Notes})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Date", "Company", "Role", "Status", "Notes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == statusColumn && row >= 0 && row < len(rows) {
				return cellStyle.Foreground(statusColors[core.Status(rows[row][statusColumn])])
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(p.out, t.String())
	return err
}

// SummaryLine formats the four aggregate counts
func SummaryLine(s core.Summary) string {
	return fmt.Sprintf("Total: %d  Interviews: %d  Offers: %d  Rejections: %d",
		s.Total, s.Interviews, s.Offers, s.Rejections)
}
