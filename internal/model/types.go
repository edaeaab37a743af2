// Package model defines the data types of the fsxray report output and the
// descriptor snapshot the analyzers consume. Report types are serialized to
// JSON and consumed by operators reviewing storage fleets.
package model

// --- Recommendations ---

// Recommendation kinds. Separator is a layout-only placeholder entry that
// immediately follows specific volume findings; it is not a real finding.
const (
	KindInfo      = "info"
	KindWarning   = "warning"
	KindCritical  = "critical"
	KindSeparator = "separator"
)

// Recommendation is one typed, human-readable finding.
type Recommendation struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// --- Input descriptors (supplied by collaborators) ---

// Tag is a key/value label attached to a filesystem or volume.
type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// FilterTags drops any tag missing a key or a value.
func FilterTags(tags []Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if t.Key != "" && t.Value != "" {
			out = append(out, t)
		}
	}
	return out
}

// FileSystemDescriptor is the control-plane snapshot of one filesystem.
type FileSystemDescriptor struct {
	ID                 string
	Generation         string
	Lifecycle          string
	DeploymentType     string
	CapacityGiB        int64
	ThroughputCapacity float64 // MB/s
	KMSKeyID           string  // empty when the filesystem is not encrypted
	Tags               []Tag
}

// VolumeDescriptor is the control-plane snapshot of one volume.
// Logical/physical byte counts carry the deduplication accounting.
type VolumeDescriptor struct {
	ID            string
	SVMID         string
	JunctionPath  string
	SizeMiB       int64
	TieringPolicy string
	LogicalBytes  int64
	PhysicalBytes int64
	Tags          []Tag
}

// StorageVirtualMachine resolves a volume's owning SVM name.
type StorageVirtualMachine struct {
	ID   string
	Name string
}

// LongTermSeries holds raw 45-day byte-sum samples per direction.
// A nil series means the long-term window was unavailable.
type LongTermSeries struct {
	ReadBytes  []float64
	WriteBytes []float64
}

// --- Output value objects ---

// LongTermIO is the long-window average rate baseline in bytes/s.
type LongTermIO struct {
	Read45d  float64 `json:"read_45d"`
	Write45d float64 `json:"write_45d"`
}

// VolumeReport is the per-volume analysis record.
type VolumeReport struct {
	ID                  string           `json:"id"`
	SVMID               string           `json:"svmid"`
	SVMName             string           `json:"svmname"`
	Path                string           `json:"path"`
	SizeGiB             int64            `json:"size_gib"`
	TieringPolicy       string           `json:"tiering_policy"`
	Tags                []Tag            `json:"tags"`
	ReadThroughputMBs   float64          `json:"read_throughput_mbs"`
	WriteThroughputMBs  float64          `json:"write_throughput_mbs"`
	TotalThroughputMBs  float64          `json:"total_throughput_mbs"`
	EfficiencyRatio     string           `json:"efficiency_ratio"`
	UsagePercentage     float64          `json:"usage_percentage"`
	MonthlyCostEstimate float64          `json:"monthly_cost_estimate"`
	LongTermIO          LongTermIO       `json:"long_term_io"`
	Recommendations     []Recommendation `json:"recommendations"`
}

// FilesystemReport is the per-filesystem analysis record.
type FilesystemReport struct {
	FSID                        string           `json:"fsid"`
	Generation                  string           `json:"gen"`
	State                       string           `json:"state"`
	DeploymentType              string           `json:"deployment_type"`
	StorageGiB                  int64            `json:"storage_gib"`
	ProvisionedGiB              int64            `json:"provisioned_gib"`
	SlackGiB                    int64            `json:"slack_gib"`
	SlackPercentage             int              `json:"slack_percentage"`
	ThroughputCapacity          float64          `json:"throughput_capacity"`
	TotalReadThroughput         float64          `json:"total_read_throughput"`
	TotalWriteThroughput        float64          `json:"total_write_throughput"`
	TotalThroughput             float64          `json:"total_throughput"`
	StorageEfficiency           string           `json:"storage_efficiency"`
	StorageEfficiencyPercentage float64          `json:"storage_efficiency_percentage"`
	MonthlyCostEstimate         float64          `json:"monthly_cost_estimate"`
	EncryptionStatus            Recommendation   `json:"encryption_status"`
	Tags                        []Tag            `json:"tags"`
	Volumes                     []VolumeReport   `json:"volumes"`
	Recommendations             []Recommendation `json:"recommendations"`
}

// AnalysisReport is the top-level response envelope.
type AnalysisReport struct {
	Timestamp string             `json:"timestamp"`
	Results   []FilesystemReport `json:"results"`
}
