package registry

import (
	"github.com/waikato-datamining/kasperl/internal/filter"
	"github.com/waikato-datamining/kasperl/internal/generator"
	"github.com/waikato-datamining/kasperl/internal/reader"
	"github.com/waikato-datamining/kasperl/internal/writer"
)

// init registers all shipped plugins.
func init() {
	RegisterGenerator("list", generator.NewList)
	RegisterGenerator("range", generator.NewRange)
	RegisterGenerator("dirs", generator.NewDirs)
	RegisterGenerator("text-file", generator.NewTextFile)
	RegisterGenerator("csv-file", generator.NewCSVFile)

	RegisterReader("list-files", reader.NewListFiles)
	RegisterReader("from-text-file", reader.NewFromTextFile)
	RegisterReader("start", reader.NewStart)
	RegisterReader("from-storage", reader.NewFromStorage)
	RegisterReader("poll-dir", reader.NewPollDir)

	RegisterFilter("pass-through", filter.NewPassThrough)
	RegisterFilter("block", filter.NewBlock)
	RegisterFilter("start", filter.NewStart)
	RegisterFilter("stop", filter.NewStop)
	RegisterFilter("trigger", filter.NewTrigger)
	RegisterFilter("tee", filter.NewTee)
	RegisterFilter("sub-process", filter.NewSubProcess)
	RegisterFilter("record-window", filter.NewRecordWindow)
	RegisterFilter("sample", filter.NewSample)
	RegisterFilter("randomize-records", filter.NewRandomize)
	RegisterFilter("split-records", filter.NewSplitRecords)
	RegisterFilter("max-records", filter.NewMaxRecords)
	RegisterFilter("check-duplicate-filenames", filter.NewCheckDuplicateFilenames)
	RegisterFilter("discard-by-name", filter.NewDiscardByName)
	RegisterFilter("discard-negatives", filter.NewDiscardNegatives)
	RegisterFilter("metadata", filter.NewMetadata)
	RegisterFilter("metadata-from-name", filter.NewMetadataFromName)
	RegisterFilter("metadata-to-placeholder", filter.NewMetadataToPlaceholder)
	RegisterFilter("set-metadata", filter.NewSetMetadata)
	RegisterFilter("set-placeholder", filter.NewSetPlaceholder)
	RegisterFilter("rename", filter.NewRename)
	RegisterFilter("attach-metadata", filter.NewAttachMetadata)
	RegisterFilter("log-data", filter.NewLogData)
	RegisterFilter("list-to-sequence", filter.NewListToSequence)
	RegisterFilter("set-storage", filter.NewSetStorage)
	RegisterFilter("move-files", filter.NewMoveFiles)
	RegisterFilter("expression", filter.NewExpression)
	RegisterFilter("script", filter.NewScript)

	RegisterWriter("console", writer.NewConsole)
	RegisterWriter("to-text-file", writer.NewToTextFile)
	RegisterWriter("to-storage", writer.NewToStorage)
	RegisterWriter("delete-files", writer.NewDeleteFiles)
	RegisterWriter("copy-files", writer.NewCopyFiles)
	RegisterWriter("to-yaml-file", writer.NewToYAMLFile)
}
