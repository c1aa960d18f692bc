package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileSaver persists cart lines as a JSON array in a single file, the same
// shape the browser client keeps under its local-storage key.
type FileSaver struct {
	Path string
}

func (f FileSaver) Save(lines []Line) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("write cart file: %w", err)
	}
	return nil
}

// Load reads previously saved lines. A missing file is an empty cart.
func (f FileSaver) Load() ([]Line, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart file: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return lines, nil
}
