package ref

import(
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/context"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSSnapshotStore keeps route table snapshots in a GCS bucket, under Prefix.
type GCSSnapshotStore struct {
	Prefix string
	client *storage.Client
	bucket *storage.BucketHandle
}

func NewGCSSnapshotStore(ctx context.Context, bucketName, prefix string, opts ...option.ClientOption) (*GCSSnapshotStore, error) {
	client,err := storage.NewClient(ctx, opts...)
	if err != nil { return nil, fmt.Errorf("NewGCSSnapshotStore: %v", err) }
	return &GCSSnapshotStore{
		Prefix: prefix,
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

func (g *GCSSnapshotStore)Close() error { return g.client.Close() }

func (g *GCSSnapshotStore)object(name string) string {
	return path.Join(g.Prefix, snapshotName(name))
}

func (g *GCSSnapshotStore)Save(ctx context.Context, name string, rt *RouteTable) error {
	objw := g.bucket.Object(g.object(name)).NewWriter(ctx)
	objw.ContentType = "application/octet-stream"
	if err := WriteSnapshot(objw, rt); err != nil {
		objw.Close()
		return err
	}
	if err := objw.Close(); err != nil {
		return fmt.Errorf("GCSSnapshotStore.Save: %v", err)
	}
	return nil
}

func (g *GCSSnapshotStore)Load(ctx context.Context, name string) (*RouteTable, error) {
	r,err := g.bucket.Object(g.object(name)).NewReader(ctx)
	if err != nil { return nil, fmt.Errorf("GCSSnapshotStore.Load: %v", err) }
	defer r.Close()
	return ReadSnapshot(r)
}

func (g *GCSSnapshotStore)List(ctx context.Context) ([]string, error) {
	query := storage.Query{
		Projection: storage.ProjectionNoACL,
		Prefix: g.Prefix,
	}

	ret := []string{}
	it := g.bucket.Objects(ctx, &query)
	for {
		if obj,err := it.Next(); err == iterator.Done {
			break
		} else if err != nil {
			return nil, err
		} else if strings.HasSuffix(obj.Name, kSnapshotSuffix) {
			ret = append(ret, strings.TrimSuffix(path.Base(obj.Name), kSnapshotSuffix))
		}
	}
	sort.Strings(ret)
	return ret, nil
}
