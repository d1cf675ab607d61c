// Package registry provides plugin registries for generators, readers,
// filters and writers.
//
// # Overview
//
// The registry package enables extensible plugin registration for the
// pipeline engine. Instead of hard-coded switch statements, plugins register
// their constructors by name. This allows contributors to add new plugins
// without modifying core factory code.
//
// # Adding a New Plugin
//
// To add a new plugin (e.g., a "from-kafka" reader):
//
//  1. Implement the appropriate interface (generator.Generator, reader.Reader,
//     filter.Filter, or one of the writer contracts)
//  2. Create a zero-argument constructor returning the plugin with its
//     option defaults set
//  3. Register the constructor in an init() function
//
// Example for a new reader plugin:
//
//	package kafka
//
//	import "github.com/waikato-datamining/kasperl/internal/registry"
//
//	func init() {
//	    registry.RegisterReader("from-kafka", NewKafkaReader)
//	}
//
// # Built-in Plugins
//
// The shipped generators, readers, filters and writers are registered
// automatically at startup via init() in builtins.go. Plugins are created
// unconfigured; the factory applies their command-line options afterwards.
package registry

import (
	"sort"
	"sync"

	"github.com/waikato-datamining/kasperl/internal/filter"
	"github.com/waikato-datamining/kasperl/internal/generator"
	"github.com/waikato-datamining/kasperl/internal/reader"
	"github.com/waikato-datamining/kasperl/internal/writer"
)

// GeneratorConstructor creates an unconfigured generator plugin.
type GeneratorConstructor func() generator.Generator

// ReaderConstructor creates an unconfigured reader plugin.
type ReaderConstructor func() reader.Reader

// FilterConstructor creates an unconfigured filter plugin.
type FilterConstructor func() filter.Filter

// WriterConstructor creates an unconfigured writer plugin.
type WriterConstructor func() writer.Writer

// generatorRegistry holds registered generator constructors.
var (
	generatorMu       sync.RWMutex
	generatorRegistry = make(map[string]GeneratorConstructor)
)

// readerRegistry holds registered reader constructors.
var (
	readerMu       sync.RWMutex
	readerRegistry = make(map[string]ReaderConstructor)
)

// filterRegistry holds registered filter constructors.
var (
	filterMu       sync.RWMutex
	filterRegistry = make(map[string]FilterConstructor)
)

// writerRegistry holds registered writer constructors.
var (
	writerMu       sync.RWMutex
	writerRegistry = make(map[string]WriterConstructor)
)

// RegisterGenerator registers a generator constructor by plugin name.
// Registering an already registered name overwrites the previous constructor.
// Safe for concurrent use; typically called from init() functions.
func RegisterGenerator(name string, constructor GeneratorConstructor) {
	generatorMu.Lock()
	defer generatorMu.Unlock()
	generatorRegistry[name] = constructor
}

// RegisterReader registers a reader constructor by plugin name.
// Registering an already registered name overwrites the previous constructor.
// Safe for concurrent use; typically called from init() functions.
func RegisterReader(name string, constructor ReaderConstructor) {
	readerMu.Lock()
	defer readerMu.Unlock()
	readerRegistry[name] = constructor
}

// RegisterFilter registers a filter constructor by plugin name.
// Registering an already registered name overwrites the previous constructor.
// Safe for concurrent use; typically called from init() functions.
func RegisterFilter(name string, constructor FilterConstructor) {
	filterMu.Lock()
	defer filterMu.Unlock()
	filterRegistry[name] = constructor
}

// RegisterWriter registers a writer constructor by plugin name.
// Registering an already registered name overwrites the previous constructor.
// Safe for concurrent use; typically called from init() functions.
func RegisterWriter(name string, constructor WriterConstructor) {
	writerMu.Lock()
	defer writerMu.Unlock()
	writerRegistry[name] = constructor
}

// GetGeneratorConstructor returns the registered constructor for a generator name.
// Returns nil if no constructor is registered for the given name.
func GetGeneratorConstructor(name string) GeneratorConstructor {
	generatorMu.RLock()
	defer generatorMu.RUnlock()
	return generatorRegistry[name]
}

// GetReaderConstructor returns the registered constructor for a reader name.
// Returns nil if no constructor is registered for the given name.
func GetReaderConstructor(name string) ReaderConstructor {
	readerMu.RLock()
	defer readerMu.RUnlock()
	return readerRegistry[name]
}

// GetFilterConstructor returns the registered constructor for a filter name.
// Returns nil if no constructor is registered for the given name.
func GetFilterConstructor(name string) FilterConstructor {
	filterMu.RLock()
	defer filterMu.RUnlock()
	return filterRegistry[name]
}

// GetWriterConstructor returns the registered constructor for a writer name.
// Returns nil if no constructor is registered for the given name.
func GetWriterConstructor(name string) WriterConstructor {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writerRegistry[name]
}

// ListGenerators returns all registered generator names, sorted.
func ListGenerators() []string {
	generatorMu.RLock()
	defer generatorMu.RUnlock()
	return sortedKeys(generatorRegistry)
}

// ListReaders returns all registered reader names, sorted.
func ListReaders() []string {
	readerMu.RLock()
	defer readerMu.RUnlock()
	return sortedKeys(readerRegistry)
}

// ListFilters returns all registered filter names, sorted.
func ListFilters() []string {
	filterMu.RLock()
	defer filterMu.RUnlock()
	return sortedKeys(filterRegistry)
}

// ListWriters returns all registered writer names, sorted.
func ListWriters() []string {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return sortedKeys(writerRegistry)
}

// sortedKeys returns the map keys in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ClearRegistries removes all registered constructors.
// This is intended for testing purposes only.
func ClearRegistries() {
	generatorMu.Lock()
	generatorRegistry = make(map[string]GeneratorConstructor)
	generatorMu.Unlock()

	readerMu.Lock()
	readerRegistry = make(map[string]ReaderConstructor)
	readerMu.Unlock()

	filterMu.Lock()
	filterRegistry = make(map[string]FilterConstructor)
	filterMu.Unlock()

	writerMu.Lock()
	writerRegistry = make(map[string]WriterConstructor)
	writerMu.Unlock()
}
