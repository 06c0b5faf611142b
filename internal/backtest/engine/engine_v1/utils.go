package engine

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResultFolder returns where a run's results are written:
// <results>/<policy>/<strategy file>/<start>_<end>/<data file>.
// The time range folder is omitted when the config has no start or end.
func ResultFolder(resultsFolder string, policy string, strategyPath string, dataPath string, config BacktestEngineV1Config) string {
	policyFolder := filepath.Join(resultsFolder, policy)
	strategyFolder := filepath.Join(policyFolder, trimExt(strategyPath))

	var dataFolder string

	if config.StartTime.IsSome() || config.EndTime.IsSome() {
		startTimeStr := "all"
		endTimeStr := "all"

		if config.StartTime.IsSome() {
			startTimeStr = config.StartTime.Unwrap().Format("20060102")
		}

		if config.EndTime.IsSome() {
			endTimeStr = config.EndTime.Unwrap().Format("20060102")
		}

		dataFolder = filepath.Join(strategyFolder, fmt.Sprintf("%s_%s", startTimeStr, endTimeStr))
	} else {
		dataFolder = strategyFolder
	}

	return filepath.Join(dataFolder, trimExt(dataPath))
}

func trimExt(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
