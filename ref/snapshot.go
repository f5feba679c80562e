package ref

import(
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/context"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshots are msgpack, zstd compressed.

const kSnapshotSuffix = ".msgpack.zst"

func WriteSnapshot(w io.Writer, rt *RouteTable) error {
	zw,err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil { return err }

	if err := msgpack.NewEncoder(zw).Encode(rt); err != nil {
		zw.Close()
		return fmt.Errorf("WriteSnapshot: %v", err)
	}
	return zw.Close()
}

func ReadSnapshot(r io.Reader) (*RouteTable, error) {
	zr,err := zstd.NewReader(r)
	if err != nil { return nil, err }
	defer zr.Close()

	rt := BlankRouteTable()
	if err := msgpack.NewDecoder(zr).Decode(rt); err != nil {
		return nil, fmt.Errorf("ReadSnapshot: %v", err)
	}
	return rt, nil
}

type SnapshotStore interface {
	Save(ctx context.Context, name string, rt *RouteTable) error
	Load(ctx context.Context, name string) (*RouteTable, error)
	List(ctx context.Context) ([]string, error)
}

func snapshotName(name string) string {
	if strings.HasSuffix(name, kSnapshotSuffix) { return name }
	return name + kSnapshotSuffix
}

// FileSnapshotStore keeps snapshots in a local directory.
type FileSnapshotStore struct {
	Dir string
}

func (fs FileSnapshotStore)Save(ctx context.Context, name string, rt *RouteTable) error {
	if err := os.MkdirAll(fs.Dir, 0755); err != nil { return err }
	f,err := os.Create(filepath.Join(fs.Dir, snapshotName(name)))
	if err != nil { return err }
	if err := WriteSnapshot(f, rt); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (fs FileSnapshotStore)Load(ctx context.Context, name string) (*RouteTable, error) {
	f,err := os.Open(filepath.Join(fs.Dir, snapshotName(name)))
	if err != nil { return nil, err }
	defer f.Close()
	return ReadSnapshot(f)
}

func (fs FileSnapshotStore)List(ctx context.Context) ([]string, error) {
	entries,err := os.ReadDir(fs.Dir)
	if err != nil { return nil, err }
	ret := []string{}
	for _,e := range entries {
		if strings.HasSuffix(e.Name(), kSnapshotSuffix) {
			ret = append(ret, strings.TrimSuffix(e.Name(), kSnapshotSuffix))
		}
	}
	sort.Strings(ret)
	return ret, nil
}
