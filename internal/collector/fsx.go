package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/fsx"
	"github.com/aws/aws-sdk-go/service/fsx/fsxiface"
	"github.com/sirupsen/logrus"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/model"
)

// defaultGeneration is assumed when the control plane omits the filesystem
// type version, matching the first-generation fleet this analyzer targets.
const defaultGeneration = "GEN_1"

// StorageAccounting supplies the logical/physical byte counts for a volume.
// The FSx control plane does not expose deduplication accounting directly,
// so the inventory fills descriptors from the monitoring API instead.
type StorageAccounting interface {
	VolumeStorageBytes(ctx context.Context, fsid, volid string) (logical, physical int64, err error)
}

// FSxInventory implements Inventory against the FSx control-plane API.
type FSxInventory struct {
	api     fsxiface.FSxAPI
	storage StorageAccounting
	log     *logrus.Entry
}

// NewFSxInventory creates an inventory client. storage may be nil, in which
// case volume descriptors carry zero logical/physical bytes.
func NewFSxInventory(api fsxiface.FSxAPI, storage StorageAccounting, log *logrus.Entry) *FSxInventory {
	return &FSxInventory{api: api, storage: storage, log: log}
}

// FileSystems lists first-generation ONTAP filesystems, optionally limited
// to a single filesystem id.
func (c *FSxInventory) FileSystems(ctx context.Context, fsid string) ([]model.FileSystemDescriptor, error) {
	input := &fsx.DescribeFileSystemsInput{}
	if fsid != "" {
		input.FileSystemIds = []*string{aws.String(fsid)}
	}

	var raw []*fsx.FileSystem
	for {
		var out *fsx.DescribeFileSystemsOutput
		err := withRetry(ctx, func() error {
			var err error
			out, err = c.api.DescribeFileSystemsWithContext(ctx, input)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("describe file systems: %w", err)
		}
		raw = append(raw, out.FileSystems...)
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	var filesystems []model.FileSystemDescriptor
	for _, fs := range raw {
		if aws.StringValue(fs.FileSystemType) != fsx.FileSystemTypeOntap {
			continue
		}
		gen := aws.StringValue(fs.FileSystemTypeVersion)
		if gen == "" {
			gen = defaultGeneration
		}
		// Second-generation filesystems have different scaling economics;
		// only GEN_1 is analyzed.
		if !strings.Contains(gen, "1") {
			continue
		}
		filesystems = append(filesystems, describeFileSystem(fs, gen))
	}
	return filesystems, nil
}

func describeFileSystem(fs *fsx.FileSystem, gen string) model.FileSystemDescriptor {
	d := model.FileSystemDescriptor{
		ID:          aws.StringValue(fs.FileSystemId),
		Generation:  gen,
		Lifecycle:   aws.StringValue(fs.Lifecycle),
		CapacityGiB: aws.Int64Value(fs.StorageCapacity),
		KMSKeyID:    aws.StringValue(fs.KmsKeyId),
		Tags:        convertTags(fs.Tags),
	}
	if d.Lifecycle == "" {
		d.Lifecycle = "UNKNOWN"
	}
	if ontap := fs.OntapConfiguration; ontap != nil {
		d.DeploymentType = aws.StringValue(ontap.DeploymentType)
		d.ThroughputCapacity = float64(aws.Int64Value(ontap.ThroughputCapacity))
	}
	if d.DeploymentType == "" {
		d.DeploymentType = "Unknown"
	}
	return d
}

// Volumes lists the volumes of one filesystem with their deduplication
// accounting attached.
func (c *FSxInventory) Volumes(ctx context.Context, fsid string) ([]model.VolumeDescriptor, error) {
	if fsid == "" {
		return nil, nil
	}
	input := &fsx.DescribeVolumesInput{
		Filters: []*fsx.VolumeFilter{{
			Name:   aws.String("file-system-id"),
			Values: []*string{aws.String(fsid)},
		}},
	}

	var raw []*fsx.Volume
	for {
		var out *fsx.DescribeVolumesOutput
		err := withRetry(ctx, func() error {
			var err error
			out, err = c.api.DescribeVolumesWithContext(ctx, input)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("describe volumes for %s: %w", fsid, err)
		}
		raw = append(raw, out.Volumes...)
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	volumes := make([]model.VolumeDescriptor, 0, len(raw))
	for _, vol := range raw {
		d := model.VolumeDescriptor{
			ID:   aws.StringValue(vol.VolumeId),
			Tags: convertTags(vol.Tags),
		}
		if ontap := vol.OntapConfiguration; ontap != nil {
			d.SVMID = aws.StringValue(ontap.StorageVirtualMachineId)
			d.JunctionPath = aws.StringValue(ontap.JunctionPath)
			d.SizeMiB = aws.Int64Value(ontap.SizeInMegabytes)
			if ontap.TieringPolicy != nil {
				d.TieringPolicy = aws.StringValue(ontap.TieringPolicy.Name)
			}
		}
		if d.JunctionPath == "" {
			d.JunctionPath = "-"
		}
		if d.TieringPolicy == "" {
			d.TieringPolicy = "UNKNOWN"
		}
		if c.storage != nil {
			logical, physical, err := c.storage.VolumeStorageBytes(ctx, fsid, d.ID)
			if err != nil {
				// Efficiency accounting degrades to "not applicable"
				// downstream; the volume itself stays analyzable.
				c.log.WithError(err).WithFields(logrus.Fields{
					"fsid": fsid, "volume": d.ID,
				}).Warn("storage accounting unavailable")
			} else {
				d.LogicalBytes = logical
				d.PhysicalBytes = physical
			}
		}
		volumes = append(volumes, d)
	}
	return volumes, nil
}

// StorageVirtualMachines lists the SVMs of one filesystem.
func (c *FSxInventory) StorageVirtualMachines(ctx context.Context, fsid string) ([]model.StorageVirtualMachine, error) {
	if fsid == "" {
		return nil, nil
	}
	input := &fsx.DescribeStorageVirtualMachinesInput{
		Filters: []*fsx.StorageVirtualMachineFilter{{
			Name:   aws.String("file-system-id"),
			Values: []*string{aws.String(fsid)},
		}},
	}

	var svms []model.StorageVirtualMachine
	for {
		var out *fsx.DescribeStorageVirtualMachinesOutput
		err := withRetry(ctx, func() error {
			var err error
			out, err = c.api.DescribeStorageVirtualMachinesWithContext(ctx, input)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("describe SVMs for %s: %w", fsid, err)
		}
		for _, svm := range out.StorageVirtualMachines {
			svms = append(svms, model.StorageVirtualMachine{
				ID:   aws.StringValue(svm.StorageVirtualMachineId),
				Name: aws.StringValue(svm.Name),
			})
		}
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}
	return svms, nil
}

func convertTags(tags []*fsx.Tag) []model.Tag {
	out := make([]model.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, model.Tag{
			Key:   aws.StringValue(t.Key),
			Value: aws.StringValue(t.Value),
		})
	}
	return out
}
