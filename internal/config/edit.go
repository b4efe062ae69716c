package config

import (
	"os"
	"os/exec"
	"runtime"
)

func defaultEditor() string {
	if runtime.GOOS == "windows" {
		return "notepad"
	}
	return "nano"
}

// Edit opens the config file in $EDITOR (or the platform default), backing
// up the current version first.
func Edit(path string) error {
	if err := ensureExists(path); err != nil {
		return err
	}
	if err := backup(path); err != nil {
		return err
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor()
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ReadRaw returns the raw YAML contents for display, materializing the
// default config if none exists.
func ReadRaw(path string) (string, error) {
	if err := ensureExists(path); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
