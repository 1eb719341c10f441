// Package plugins registers all built-in plugins.
package plugins

import (
	"stellab.xyz/argus/pkg/plugin"
	"stellab.xyz/argus/plugins/extractor/binary"
	csvextract "stellab.xyz/argus/plugins/extractor/csvfile"
	"stellab.xyz/argus/plugins/loader/console"
	"stellab.xyz/argus/plugins/loader/csvfile"
	"stellab.xyz/argus/plugins/loader/sqlite"
	"stellab.xyz/argus/plugins/transformer/apidfilter"
	"stellab.xyz/argus/plugins/transformer/calibration"
	"stellab.xyz/argus/plugins/transformer/decom"
)

func init() {
	// Register extractor plugins
	plugin.RegisterExtractor("binary", binary.NewBinaryExtractor)
	plugin.RegisterExtractor("csv", csvextract.NewCSVExtractor)

	// Register transformer plugins
	plugin.RegisterTransformer("decom", decom.NewDecomTransformer)
	plugin.RegisterTransformer("calibration", calibration.NewCalibrationTransformer)
	plugin.RegisterTransformer("apid_filter", apidfilter.NewApidFilterTransformer)

	// Register loader plugins
	plugin.RegisterLoader("console", console.NewConsoleLoader)
	plugin.RegisterLoader("csv", csvfile.NewCSVLoader)
	plugin.RegisterLoader("sqlite", sqlite.NewSQLiteLoader)
}
