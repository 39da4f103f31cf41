package report

import (
	"fmt"
	"io"

	"github.com/sergev/slacksweep/sector"
)

// Line renders the one-line summary for a completed pattern file: the mean
// score (truncated to an integer, shown as '*' when it is exactly 10) and a
// per-sector string with one character per sector ('0'..'9', or '*' for 10).
func Line(filename string, scores []byte) string {
	return fmt.Sprintf("%s: sectors = %d score = %s by sector = %s",
		filename, len(scores), meanChar(scores), bySector(scores))
}

// Emit writes Line's output to w, followed by a newline.
func Emit(w io.Writer, filename string, scores []byte) error {
	_, err := fmt.Fprintln(w, Line(filename, scores))
	return err
}

func meanChar(scores []byte) string {
	if len(scores) == 0 {
		return "0"
	}
	sum := 0
	for _, s := range scores {
		sum += int(s)
	}
	mean := sum / len(scores)
	return scoreChar(byte(mean))
}

func bySector(scores []byte) string {
	buf := make([]byte, len(scores))
	for i, s := range scores {
		buf[i] = scoreChar(s)[0]
	}
	return string(buf)
}

func scoreChar(s byte) string {
	if int(s) == sector.MaxScore {
		return "*"
	}
	return fmt.Sprintf("%d", s)
}
