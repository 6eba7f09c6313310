package processfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/core-tools/hsu-lifesim/pkg/errors"
	"github.com/core-tools/hsu-lifesim/pkg/logging"
)

// PIDFile publishes the simulator's PID for supervisors that locate their
// process through a file instead of tracking the child directly.
type PIDFile struct {
	path   string
	pid    int
	logger logging.Logger
}

func NewPIDFile(path string, logger logging.Logger) *PIDFile {
	return &PIDFile{
		path:   path,
		logger: logger,
	}
}

func (f *PIDFile) Path() string {
	return f.path
}

// Write stores pid as "<pid>\n". An existing file is overwritten; if it
// names another live process that is reported, since a supervisor under test
// may have leaked an instance.
func (f *PIDFile) Write(pid int) error {
	f.logger.Debugf("Writing PID file, pid: %d, path: %s", pid, f.path)

	if err := ValidatePIDFileDirectory(f.path); err != nil {
		f.logger.Errorf("PID file directory validation failed, path: %s, error: %v", f.path, err)
		return errors.NewIOError("PID file directory validation failed", err).WithContext("pid_file", f.path)
	}

	if previous, err := f.Read(); err == nil && previous != pid {
		if running, _ := IsProcessRunning(previous); running {
			f.logger.Warnf("PID file belongs to a running process, overwriting, path: %s, previous pid: %d", f.path, previous)
		}
	}

	content := fmt.Sprintf("%d\n", pid)
	if err := os.WriteFile(f.path, []byte(content), 0644); err != nil {
		f.logger.Errorf("Failed to write PID file, pid: %d, path: %s, error: %v", pid, f.path, err)
		return errors.NewIOError("failed to write PID file", err).WithContext("pid_file", f.path).WithContext("pid", pid)
	}

	f.pid = pid
	f.logger.Infof("PID file written successfully, pid: %d, path: %s", pid, f.path)
	return nil
}

// Read returns the PID stored in the file.
func (f *PIDFile) Read() (int, error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		return 0, errors.NewIOError("failed to read PID file", err).WithContext("pid_file", f.path)
	}

	pidStr := strings.TrimSpace(string(content))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, errors.NewValidationError("invalid PID in PID file", err).WithContext("pid_file", f.path).WithContext("content", pidStr)
	}
	return pid, nil
}

// Remove deletes the file if it still holds the PID this PIDFile wrote.
// A file taken over by another instance is left alone.
func (f *PIDFile) Remove() error {
	if f.pid == 0 {
		return nil
	}

	current, err := f.Read()
	if err != nil {
		if _, statErr := os.Stat(f.path); os.IsNotExist(statErr) {
			return nil
		}
		return err
	}
	if current != f.pid {
		f.logger.Warnf("PID file was taken over, not removing, path: %s, ours: %d, found: %d", f.path, f.pid, current)
		return nil
	}

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.NewIOError("failed to remove PID file", err).WithContext("pid_file", f.path)
	}

	f.logger.Debugf("PID file removed, path: %s", f.path)
	return nil
}

// ValidatePIDFileDirectory validates that the PID file directory exists and is writable
func ValidatePIDFileDirectory(pidFilePath string) error {
	dir := filepath.Dir(pidFilePath)

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.NewIOError("failed to create PID file directory", err).WithContext("directory", dir)
			}
		} else {
			return errors.NewIOError("failed to access PID file directory", err).WithContext("directory", dir)
		}
	} else if !info.IsDir() {
		return errors.NewValidationError("PID file path is not a directory", nil).WithContext("path", dir)
	}

	testFile := filepath.Join(dir, ".write_test")
	if file, err := os.Create(testFile); err != nil {
		return errors.NewIOError("PID file directory is not writable", err).WithContext("directory", dir)
	} else {
		file.Close()
		os.Remove(testFile)
	}

	return nil
}
