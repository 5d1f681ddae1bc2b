package training

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
)

// WriteReport prints a summary of result as tables
func WriteReport(w io.Writer, result *Result) {
	summary := tablewriter.NewWriter(w)
	summary.SetHeader([]string{"Setting", "Value"})
	summary.SetAutoFormatHeaders(false)
	summary.SetAlignment(tablewriter.ALIGN_LEFT)
	summary.AppendBulk([][]string{
		{"records", strconv.Itoa(result.Records)},
		{"training records", strconv.Itoa(result.TrainRecords)},
		{"text field", textField(result.UsedBody)},
		{"vocabulary", strconv.Itoa(result.Vectorizer.Dim())},
		{"trees", strconv.Itoa(len(result.Forest.Trees))},
		{"duration", result.Duration.Round(time.Millisecond).String()},
	})
	summary.Render()

	if result.Metrics == nil {
		return
	}
	m := result.Metrics

	fmt.Fprintln(w)
	scores := tablewriter.NewWriter(w)
	scores.SetHeader([]string{"Samples", "Accuracy", "Precision", "Recall", "F1"})
	scores.Append([]string{
		strconv.Itoa(m.Samples),
		formatScore(m.Accuracy),
		formatScore(m.Precision),
		formatScore(m.Recall),
		formatScore(m.F1),
	})
	scores.Render()

	fmt.Fprintln(w)
	confusion := tablewriter.NewWriter(w)
	confusion.SetHeader([]string{"Actual \\ Predicted", "Safe", "Phishing"})
	confusion.SetAutoFormatHeaders(false)
	confusion.AppendBulk([][]string{
		{"Safe", strconv.Itoa(m.Confusion[0][0]), strconv.Itoa(m.Confusion[0][1])},
		{"Phishing", strconv.Itoa(m.Confusion[1][0]), strconv.Itoa(m.Confusion[1][1])},
	})
	confusion.Render()
}

func textField(usedBody bool) string {
	if usedBody {
		return "subject + body"
	}
	return "subject + urls"
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
