package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// CheckStrategyFileCompatibility checks that a strategy file written for
// fileVersion can be run by engineVersion.
//
// Rules:
//   - an empty fileVersion or "main" on either side skips the check
//   - major and minor must match; patch may differ
func CheckStrategyFileCompatibility(engineVersion, fileVersion string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	fileVersion = strings.TrimPrefix(fileVersion, "v")

	if fileVersion == "" || engineVersion == "main" || fileVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid engine version '%s'", engineVersion)
	}

	fileSemver, err := semver.NewVersion(fileVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid strategy file version '%s'", fileVersion)
	}

	if engineSemver.Major() != fileSemver.Major() || engineSemver.Minor() != fileSemver.Minor() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"version mismatch: engine is %d.%d.x but strategy file targets %d.%d.x",
			engineSemver.Major(), engineSemver.Minor(), fileSemver.Major(), fileSemver.Minor())
	}

	return nil
}
