package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/fsx"
	"github.com/aws/aws-sdk-go/service/fsx/fsxiface"
)

type fakeFSxAPI struct {
	fsxiface.FSxAPI

	fileSystemPages []*fsx.DescribeFileSystemsOutput
	volumePages     []*fsx.DescribeVolumesOutput
	svmPages        []*fsx.DescribeStorageVirtualMachinesOutput

	fsCalls  int
	volCalls int
	svmCalls int
}

func (f *fakeFSxAPI) DescribeFileSystemsWithContext(ctx aws.Context, input *fsx.DescribeFileSystemsInput, opts ...request.Option) (*fsx.DescribeFileSystemsOutput, error) {
	out := f.fileSystemPages[f.fsCalls]
	f.fsCalls++
	return out, nil
}

func (f *fakeFSxAPI) DescribeVolumesWithContext(ctx aws.Context, input *fsx.DescribeVolumesInput, opts ...request.Option) (*fsx.DescribeVolumesOutput, error) {
	out := f.volumePages[f.volCalls]
	f.volCalls++
	return out, nil
}

func (f *fakeFSxAPI) DescribeStorageVirtualMachinesWithContext(ctx aws.Context, input *fsx.DescribeStorageVirtualMachinesInput, opts ...request.Option) (*fsx.DescribeStorageVirtualMachinesOutput, error) {
	out := f.svmPages[f.svmCalls]
	f.svmCalls++
	return out, nil
}

type fakeAccounting struct {
	logical, physical int64
	err               error
}

func (f *fakeAccounting) VolumeStorageBytes(ctx context.Context, fsid, volid string) (int64, int64, error) {
	return f.logical, f.physical, f.err
}

func ontapFS(id, version string) *fsx.FileSystem {
	return &fsx.FileSystem{
		FileSystemId:          aws.String(id),
		FileSystemType:        aws.String(fsx.FileSystemTypeOntap),
		FileSystemTypeVersion: aws.String(version),
		Lifecycle:             aws.String("AVAILABLE"),
		StorageCapacity:       aws.Int64(1024),
		KmsKeyId:              aws.String("arn:aws:kms:eu-west-1:1:key/k"),
		OntapConfiguration: &fsx.OntapFileSystemConfiguration{
			DeploymentType:     aws.String("MULTI_AZ_1"),
			ThroughputCapacity: aws.Int64(256),
		},
	}
}

func TestFileSystemsGenerationFilter(t *testing.T) {
	windows := &fsx.FileSystem{
		FileSystemId:   aws.String("fs-win"),
		FileSystemType: aws.String(fsx.FileSystemTypeWindows),
	}
	unversioned := ontapFS("fs-unversioned", "")
	unversioned.FileSystemTypeVersion = nil

	api := &fakeFSxAPI{fileSystemPages: []*fsx.DescribeFileSystemsOutput{{
		FileSystems: []*fsx.FileSystem{
			ontapFS("fs-gen1", "GEN_1"),
			ontapFS("fs-gen2", "GEN_2"),
			windows,
			unversioned,
		},
	}}}
	inv := NewFSxInventory(api, nil, quietLog())

	filesystems, err := inv.FileSystems(context.Background(), "")
	if err != nil {
		t.Fatalf("FileSystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("filesystems = %+v, want fs-gen1 and fs-unversioned", filesystems)
	}
	if filesystems[0].ID != "fs-gen1" || filesystems[1].ID != "fs-unversioned" {
		t.Errorf("ids = %s, %s", filesystems[0].ID, filesystems[1].ID)
	}
	// Missing version is assumed first-generation.
	if filesystems[1].Generation != "GEN_1" {
		t.Errorf("Generation = %q, want GEN_1", filesystems[1].Generation)
	}
	if filesystems[0].DeploymentType != "MULTI_AZ_1" || filesystems[0].ThroughputCapacity != 256 {
		t.Errorf("descriptor = %+v", filesystems[0])
	}
}

func TestFileSystemsPagination(t *testing.T) {
	api := &fakeFSxAPI{fileSystemPages: []*fsx.DescribeFileSystemsOutput{
		{
			FileSystems: []*fsx.FileSystem{ontapFS("fs-1", "GEN_1")},
			NextToken:   aws.String("page2"),
		},
		{
			FileSystems: []*fsx.FileSystem{ontapFS("fs-2", "GEN_1")},
		},
	}}
	inv := NewFSxInventory(api, nil, quietLog())

	filesystems, err := inv.FileSystems(context.Background(), "")
	if err != nil {
		t.Fatalf("FileSystems: %v", err)
	}
	if len(filesystems) != 2 || api.fsCalls != 2 {
		t.Errorf("filesystems = %d across %d calls, want 2 across 2", len(filesystems), api.fsCalls)
	}
}

func TestVolumesDefaultsAndAccounting(t *testing.T) {
	api := &fakeFSxAPI{volumePages: []*fsx.DescribeVolumesOutput{{
		Volumes: []*fsx.Volume{
			{
				VolumeId: aws.String("fsvol-full"),
				OntapConfiguration: &fsx.OntapVolumeConfiguration{
					StorageVirtualMachineId: aws.String("svm-abc"),
					JunctionPath:            aws.String("/data"),
					SizeInMegabytes:         aws.Int64(102400),
					TieringPolicy:           &fsx.TieringPolicy{Name: aws.String("AUTO")},
				},
			},
			{VolumeId: aws.String("fsvol-bare")},
		},
	}}}
	inv := NewFSxInventory(api, &fakeAccounting{logical: 2000, physical: 1000}, quietLog())

	volumes, err := inv.Volumes(context.Background(), "fs-abc")
	if err != nil {
		t.Fatalf("Volumes: %v", err)
	}
	if len(volumes) != 2 {
		t.Fatalf("volumes = %+v", volumes)
	}

	full := volumes[0]
	if full.SVMID != "svm-abc" || full.JunctionPath != "/data" || full.SizeMiB != 102400 || full.TieringPolicy != "AUTO" {
		t.Errorf("full descriptor = %+v", full)
	}
	if full.LogicalBytes != 2000 || full.PhysicalBytes != 1000 {
		t.Errorf("accounting = %d/%d", full.LogicalBytes, full.PhysicalBytes)
	}

	bare := volumes[1]
	if bare.JunctionPath != "-" {
		t.Errorf("JunctionPath = %q, want -", bare.JunctionPath)
	}
	if bare.TieringPolicy != "UNKNOWN" {
		t.Errorf("TieringPolicy = %q, want UNKNOWN", bare.TieringPolicy)
	}
}

func TestVolumesAccountingFailureDegrades(t *testing.T) {
	api := &fakeFSxAPI{volumePages: []*fsx.DescribeVolumesOutput{{
		Volumes: []*fsx.Volume{{VolumeId: aws.String("fsvol-001")}},
	}}}
	inv := NewFSxInventory(api, &fakeAccounting{err: errors.New("no samples")}, quietLog())

	volumes, err := inv.Volumes(context.Background(), "fs-abc")
	if err != nil {
		t.Fatalf("Volumes: %v", err)
	}
	if len(volumes) != 1 {
		t.Fatalf("volumes = %+v, want the volume kept", volumes)
	}
	if volumes[0].LogicalBytes != 0 || volumes[0].PhysicalBytes != 0 {
		t.Errorf("accounting = %d/%d, want zeros", volumes[0].LogicalBytes, volumes[0].PhysicalBytes)
	}
}

func TestStorageVirtualMachines(t *testing.T) {
	api := &fakeFSxAPI{svmPages: []*fsx.DescribeStorageVirtualMachinesOutput{
		{
			StorageVirtualMachines: []*fsx.StorageVirtualMachine{
				{StorageVirtualMachineId: aws.String("svm-1"), Name: aws.String("production")},
			},
			NextToken: aws.String("page2"),
		},
		{
			StorageVirtualMachines: []*fsx.StorageVirtualMachine{
				{StorageVirtualMachineId: aws.String("svm-2"), Name: aws.String("staging")},
			},
		},
	}}
	inv := NewFSxInventory(api, nil, quietLog())

	svms, err := inv.StorageVirtualMachines(context.Background(), "fs-abc")
	if err != nil {
		t.Fatalf("StorageVirtualMachines: %v", err)
	}
	if len(svms) != 2 || svms[0].Name != "production" || svms[1].Name != "staging" {
		t.Errorf("svms = %+v", svms)
	}
}

func TestVolumesEmptyFilesystemID(t *testing.T) {
	inv := NewFSxInventory(&fakeFSxAPI{}, nil, quietLog())
	volumes, err := inv.Volumes(context.Background(), "")
	if err != nil || volumes != nil {
		t.Errorf("got %v, %v; want nil, nil", volumes, err)
	}
}
