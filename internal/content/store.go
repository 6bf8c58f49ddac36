package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/TretaGroup/tretaweb/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrInvalidSection  = errors.New("invalid section name")
	ErrPathViolation   = errors.New("section path escapes content root")
	ErrSectionNotFound = errors.New("section document not found")
)

// Sections is the closed set of documents the CMS can edit. One JSON file
// per name lives under the content root.
var Sections = []string{
	"hero",
	"about",
	"services",
	"numbersHome",
	"values",
	"caseStudies",
	"faq",
	"footer",
	"header",
	"cta",
	"meta",
}

var sectionSet = func() map[string]bool {
	set := make(map[string]bool, len(Sections))
	for _, s := range Sections {
		set[s] = true
	}
	return set
}()

func ValidSection(name string) bool {
	return sectionSet[name]
}

const (
	oneHour            = 60 * 60
	sectionCacheExpire = oneHour * 1 // default expire in hours
	sectionCacheSize   = 10 * 1024 * 1024
)

// Store persists section documents as pretty-printed JSON files, one per
// section, under a single sandboxed root directory. Reads go through a
// freecache layer; writes are atomic (temp file + rename) and serialized,
// so concurrent readers never observe a partial document.
type Store struct {
	rootPath string // absolute
	cache    *freecache.Cache
	mutex    sync.Mutex
}

func NewStore(rootPath string) (*Store, error) {
	if rootPath == "" {
		return nil, errors.New("content root path cannot be empty")
	}

	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}

	return &Store{
		rootPath: absRoot,
		cache:    freecache.NewCache(sectionCacheSize),
	}, nil
}

// resolvePath returns the absolute file path for a section document and
// guards against any resolution escaping the content root. The allow-list
// already constrains section values; this is the backstop behind it.
func (s *Store) resolvePath(section string) (string, error) {
	resolved := filepath.Clean(filepath.Join(s.rootPath, section+".json"))
	if !strings.HasPrefix(resolved, s.rootPath+string(filepath.Separator)) {
		return "", ErrPathViolation
	}
	return resolved, nil
}

// Save overwrites the section document wholesale with the given JSON body.
// The allow-list and path checks run before any filesystem interaction.
func (s *Store) Save(ctx context.Context, section string, body json.RawMessage) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "contentStore.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("content.section", section))

	if !ValidSection(section) {
		return ErrInvalidSection
	}

	targetPath, err := s.resolvePath(section)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		return fmt.Errorf("indent section body: %w", err)
	}
	pretty.WriteByte('\n')

	s.mutex.Lock()
	defer s.mutex.Unlock()

	tmpFile, err := os.CreateTemp(s.rootPath, "."+section+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(pretty.Bytes()); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	// atomic replace, readers see either the old or the new document
	if err := os.Rename(tmpPath, targetPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace section document: %w", err)
	}

	s.cache.Del([]byte(section))
	log.Debugf("content store: section [%s] saved", section)

	return nil
}

// Get returns the current document for a section, going through the read
// cache first.
func (s *Store) Get(ctx context.Context, section string) (_ []byte, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "contentStore.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("content.section", section))

	if !ValidSection(section) {
		return nil, ErrInvalidSection
	}

	cacheKey := []byte(section)
	if cached, err := s.cache.Get(cacheKey); err == nil {
		span.SetAttributes(attribute.Bool("content.cache_hit", true))
		return cached, nil
	}

	targetPath, err := s.resolvePath(section)
	if err != nil {
		return nil, err
	}

	doc, err := os.ReadFile(targetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("read section document: %w", err)
	}

	if err := s.cache.Set(cacheKey, doc, sectionCacheExpire); err != nil {
		log.Warnf("content store: cache section [%s]: %s", section, err)
	}

	return doc, nil
}
