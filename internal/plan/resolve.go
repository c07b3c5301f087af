package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Input is a resolved plan plus the statement it came from. SQL is empty when
// the input was already an EXPLAIN JSON document.
type Input struct {
	Explain ExplainOutput
	SQL     string
	Name    string
}

func Resolve(ctx context.Context, input string, dbConn string, label string, opts ExplainOptions) (Input, error) {
	data, err := readInput(input, label)
	if err != nil {
		return Input{}, err
	}

	inputType := detectType(data, input)
	resolved := Input{Name: displayName(input)}

	switch inputType {
	case "json":
		resolved.Explain, err = Parse(data)
	case "sql":
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(strings.ToUpper(trimmed), "EXPLAIN") {
			return Input{}, fmt.Errorf("input should not include EXPLAIN prefix - provide the raw query only")
		}

		if dbConn == "" {
			return Input{}, fmt.Errorf("SQL input requires a database connection")
		}
		resolved.SQL = string(data)
		resolved.Explain, err = Execute(ctx, dbConn, resolved.SQL, opts)
	case "text":
		return Input{}, fmt.Errorf(`text format not supported - use JSON format:

EXPLAIN (ANALYZE, BUFFERS, COSTS ON, TIMING OFF, FORMAT JSON) <your query>

Then provide the complete JSON output.`)
	default:
		return Input{}, fmt.Errorf("unable to detect %sinput type: expected JSON plan, SQL query, or .json/.sql file", label)
	}

	if err != nil {
		return Input{}, err
	}
	return resolved, nil
}

func displayName(input string) string {
	switch input {
	case "", "-":
		return "stdin"
	default:
		return filepath.Base(input)
	}
}

func readInput(input string, label string) ([]byte, error) {
	switch input {
	case "":
		return readInteractive(label)
	case "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(input)
	}
}

func readInteractive(label string) ([]byte, error) {
	fmt.Printf("Paste %sEXPLAIN (ANALYZE, BUFFERS, FORMAT JSON) output or SQL query", label)
	if runtime.GOOS == "windows" {
		fmt.Print(" (Ctrl+Z, Enter to submit)\n")
	} else {
		fmt.Print(" (Ctrl+D to submit)\n")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))

	if (strings.HasPrefix(trimmed, "[") ||
		strings.HasPrefix(trimmed, "{")) &&
		!json.Valid(data) {
		return nil, fmt.Errorf("input appears truncated; for large inputs use: pgeval evaluate <file>")
	}

	return data, nil
}

func detectType(data []byte, filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	}
	if strings.HasSuffix(filename, ".sql") {
		return "sql"
	}
	if strings.HasSuffix(filename, ".txt") {
		return "text"
	}

	trimmed := strings.TrimSpace(string(data))

	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return "json"
	}

	if strings.Contains(trimmed, "(cost=") {
		return "text"
	}

	if strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") ||
		strings.HasPrefix(strings.ToUpper(trimmed), "WITH") ||
		strings.HasPrefix(strings.ToUpper(trimmed), "INSERT") ||
		strings.HasPrefix(strings.ToUpper(trimmed), "UPDATE") ||
		strings.HasPrefix(strings.ToUpper(trimmed), "DELETE") ||
		strings.HasPrefix(strings.ToUpper(trimmed), "EXPLAIN") {
		return "sql"
	}

	return "unknown"
}
