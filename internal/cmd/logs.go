package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	logsFollow bool
	logsLines  int
)

var logsCmd = &cobra.Command{
	Use:    "logs",
	Short:  "View seek logs",
	Hidden: true,
	Long: `View the seek log file.

While the search screen is running the terminal belongs to the TUI,
so seek logs to a file instead of stderr. This command shows that
file.

By default, shows the last 50 lines of the log file.
Use --follow to continuously monitor new log entries.

Examples:
  seek logs              # Show last 50 lines
  seek logs -f           # Follow log output
  seek logs --lines=100  # Show last 100 lines`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 50, "Number of lines to show")

	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, paths, err := loadConfig()
	if err != nil {
		return err
	}

	logFile := cfg.LogFilePath(paths)

	// Check if log file exists
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		fmt.Printf("No log file found at: %s\n", logFile)
		fmt.Println("Run a search first; the TUI logs there.")
		return nil
	}

	if logsFollow {
		return followLogs(cmd.Context(), logFile)
	}

	return tailLogs(logFile, logsLines)
}

func tailLogs(filename string, n int) error {
	// Validate n to prevent panic on negative capacity
	if n <= 0 {
		return nil
	}

	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	if stat.Size() == 0 {
		fmt.Println("Log file is empty.")
		return nil
	}

	lines, err := collectTailLines(f, stat.Size(), n)
	if err != nil {
		return err
	}

	for _, line := range lines {
		fmt.Println(line)
	}

	return nil
}

// collectTailLines reads backwards from the end of f until it has the
// last n lines.
func collectTailLines(f *os.File, size int64, n int) ([]string, error) {
	lines := make([]string, 0, n)
	offset := size
	remainder := "" // Carry partial line fragment between chunks

	for len(lines) < n && offset > 0 {
		chunkLines, rem, err := readChunkLines(f, &offset, 4096, remainder)
		if err != nil {
			return nil, err
		}
		remainder = rem

		// Prepend lines
		for i := len(chunkLines) - 1; i >= 0 && len(lines) < n; i-- {
			if chunkLines[i] != "" || len(lines) > 0 {
				lines = append([]string{chunkLines[i]}, lines...)
			}
		}
	}

	// Include remainder if we have room and it's not empty
	if remainder != "" && len(lines) < n {
		lines = append([]string{remainder}, lines...)
	}

	return lines, nil
}

// readChunkLines reads one chunk ending at *offset and splits it into
// lines. The first line comes back as the new remainder when the chunk
// does not start at the beginning of the file, since it may be partial.
func readChunkLines(f *os.File, offset *int64, bufSize int64, remainder string) ([]string, string, error) {
	readSize := bufSize
	if *offset < bufSize {
		readSize = *offset
	}
	*offset -= readSize

	buf := make([]byte, readSize)
	nRead, err := f.ReadAt(buf, *offset)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("failed to read log file: %w", err)
	}

	chunk := string(buf[:nRead]) + remainder
	chunkLines := splitLines(chunk)

	if *offset > 0 && len(chunkLines) > 0 {
		return chunkLines[1:], chunkLines[0], nil
	}
	return chunkLines, "", nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func followLogs(ctx context.Context, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	// Seek to end
	_, err = f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	fmt.Printf("Following %s (Ctrl+C to stop)...\n", filename)
	fmt.Println()

	reader := bufio.NewReader(f)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// Print any partial fragment before waiting
				if line != "" {
					fmt.Print(line)
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(100 * time.Millisecond):
				}
				continue
			}
			return fmt.Errorf("error reading log: %w", err)
		}

		fmt.Print(line)
	}
}
