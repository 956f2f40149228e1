package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/osintlab/ecoprofiler/internal/model"
)

// Store persists fetched collections as per-region snapshot files so
// reports can be regenerated without refetching.
type Store struct {
	dataDir string
}

// NewStore creates a snapshot store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// DataDir returns the snapshot root directory.
func (s *Store) DataDir() string {
	return s.dataDir
}

var alertHeader = []string{"latitude", "longitude", "date", "confidence", "area", "alert_type"}

// SaveAlerts writes forest alerts to data/alerts/<region>_glad.csv.
func (s *Store) SaveAlerts(region string, alerts []model.ForestAlert) error {
	path := s.alertsPath(region)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create alerts dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(alertHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range alerts {
		row := []string{
			strconv.FormatFloat(a.Latitude, 'f', -1, 64),
			strconv.FormatFloat(a.Longitude, 'f', -1, 64),
			a.Date,
			strconv.FormatFloat(a.Confidence, 'f', -1, 64),
			strconv.FormatFloat(a.AreaHa, 'f', -1, 64),
			a.AlertType,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write alert row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// LoadAlerts reads the alert snapshot for a region. A missing file yields
// an empty slice; malformed rows are skipped.
func (s *Store) LoadAlerts(region string) ([]model.ForestAlert, error) {
	f, err := os.Open(s.alertsPath(region))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open alerts snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read alerts snapshot: %w", err)
	}

	var alerts []model.ForestAlert
	for i, row := range rows {
		if i == 0 || len(row) < 6 {
			continue
		}
		lat, err1 := strconv.ParseFloat(row[0], 64)
		lon, err2 := strconv.ParseFloat(row[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		conf, _ := strconv.ParseFloat(row[3], 64)
		area, _ := strconv.ParseFloat(row[4], 64)
		alerts = append(alerts, model.ForestAlert{
			Latitude:   lat,
			Longitude:  lon,
			Date:       row[2],
			Confidence: conf,
			AreaHa:     area,
			AlertType:  row[5],
		})
	}
	return alerts, nil
}

// SaveCompanies writes companies to data/companies/<region>_companies.json.
func (s *Store) SaveCompanies(region string, companies []model.Company) error {
	return s.saveJSON(s.companiesPath(region), companies)
}

// LoadCompanies reads the company snapshot for a region.
func (s *Store) LoadCompanies(region string) ([]model.Company, error) {
	var companies []model.Company
	if err := s.loadJSON(s.companiesPath(region), &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// SaveBusinesses writes mapped businesses to data/companies/<region>_osm.json.
func (s *Store) SaveBusinesses(region string, businesses []model.Business) error {
	return s.saveJSON(s.businessesPath(region), businesses)
}

// LoadBusinesses reads the business snapshot for a region.
func (s *Store) LoadBusinesses(region string) ([]model.Business, error) {
	var businesses []model.Business
	if err := s.loadJSON(s.businessesPath(region), &businesses); err != nil {
		return nil, err
	}
	return businesses, nil
}

// SavePosts writes social posts to data/reddit/<region>_posts.json.
func (s *Store) SavePosts(region string, posts []model.SocialPost) error {
	return s.saveJSON(s.postsPath(region), posts)
}

// LoadPosts reads the social post snapshot for a region.
func (s *Store) LoadPosts(region string) ([]model.SocialPost, error) {
	var posts []model.SocialPost
	if err := s.loadJSON(s.postsPath(region), &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// SaveImage writes a satellite PNG to data/satellite/<region>_<name>.png
// and returns the path.
func (s *Store) SaveImage(region, name string, png []byte) (string, error) {
	dir := filepath.Join(s.dataDir, "satellite")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create satellite dir: %w", err)
	}
	path := filepath.Join(dir, slug(region)+"_"+name+".png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ReportPath returns the output path for a report file, creating the
// reports directory if needed.
func (s *Store) ReportPath(region, ext string) (string, error) {
	dir := filepath.Join(s.dataDir, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	return filepath.Join(dir, slug(region)+"_report."+ext), nil
}

// ListRegions returns the regions that have at least one snapshot file,
// sorted alphabetically.
func (s *Store) ListRegions() ([]string, error) {
	seen := map[string]bool{}
	collect := func(dir, suffix string) {
		entries, err := os.ReadDir(filepath.Join(s.dataDir, dir))
		if err != nil {
			return
		}
		for _, e := range entries {
			name := e.Name()
			if region, ok := strings.CutSuffix(name, suffix); ok {
				seen[region] = true
			}
		}
	}
	collect("alerts", "_glad.csv")
	collect("companies", "_companies.json")
	collect("companies", "_osm.json")
	collect("reddit", "_posts.json")

	regions := make([]string, 0, len(seen))
	for r := range seen {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	return regions, nil
}

func (s *Store) alertsPath(region string) string {
	return filepath.Join(s.dataDir, "alerts", slug(region)+"_glad.csv")
}

func (s *Store) companiesPath(region string) string {
	return filepath.Join(s.dataDir, "companies", slug(region)+"_companies.json")
}

func (s *Store) businessesPath(region string) string {
	return filepath.Join(s.dataDir, "companies", slug(region)+"_osm.json")
}

func (s *Store) postsPath(region string) string {
	return filepath.Join(s.dataDir, "reddit", slug(region)+"_posts.json")
}

func (s *Store) saveJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// loadJSON decodes a snapshot file into v. Missing files leave v untouched.
func (s *Store) loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// slug normalizes a region name for use in file names.
func slug(region string) string {
	region = strings.ToLower(strings.TrimSpace(region))
	return strings.ReplaceAll(region, " ", "_")
}
