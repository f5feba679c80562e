package rpc

import(
	"fmt"
	"time"

	"golang.org/x/net/context"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/skypies/flytau"
)

// Client talks to a flytau.Scheduler service. Results come back as the raw structs; the
// field names are the same as the JSON API's.
type Client struct {
	conn     *grpc.ClientConn
	Operator  string
}

// Dial connects without TLS; callers inside the cluster only. Extra options are appended.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn,err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("rpc.Dial %s: %v", target, err)
	}
	return &Client{conn:conn}, nil
}

func (c *Client)Close() error { return c.conn.Close() }

func (c *Client)query(cand flytau.Candidate) map[string]interface{} {
	return map[string]interface{}{
		"origin": string(cand.Origin),
		"destination": string(cand.Destination),
		"departure": cand.DepartureUTC.UTC().Format(time.RFC3339),
		"operator": c.Operator,
	}
}

func (c *Client)invoke(ctx context.Context, method string, q map[string]interface{}) (*structpb.Struct, error) {
	in,err := structpb.NewStruct(q)
	if err != nil { return nil, err }
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Available returns the list of available resources, each as a map.
func (c *Client)Available(ctx context.Context, kind flytau.ResourceKind, cand flytau.Candidate) ([]map[string]interface{}, error) {
	q := c.query(cand)
	q["kind"] = kind.String()
	out,err := c.invoke(ctx, "Available", q)
	if err != nil { return nil, err }

	ret := []map[string]interface{}{}
	for _,v := range out.GetFields()["available"].GetListValue().GetValues() {
		ret = append(ret, v.GetStructValue().AsMap())
	}
	return ret, nil
}

func (c *Client)Roster(ctx context.Context, cand flytau.Candidate) (map[string]interface{}, error) {
	out,err := c.invoke(ctx, "Roster", c.query(cand))
	if err != nil { return nil, err }
	return out.AsMap(), nil
}
