package emotion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// LoadLabels reads the label set. A .json file must contain an array of strings;
// anything else is read as one label per line.
func LoadLabels(fileName string) (LabelSet, error) {
	content, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read labels file")
	}

	var labels LabelSet
	if strings.EqualFold(filepath.Ext(fileName), ".json") {
		if err := json.Unmarshal(content, &labels); err != nil {
			return nil, errors.Wrapf(err, "Can't parse labels from %s", fileName)
		}
	} else {
		for _, line := range strings.Split(string(content), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				labels = append(labels, line)
			}
		}
	}

	if len(labels) == 0 {
		return nil, configErrorf("label file %s is empty", fileName)
	}
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if l == "" {
			return nil, configErrorf("label file %s contains an empty label", fileName)
		}
		if _, dup := seen[l]; dup {
			return nil, configErrorf("label %q appears twice in %s", l, fileName)
		}
		seen[l] = struct{}{}
	}
	return labels, nil
}
