// Package rpc exposes the read-only availability queries over gRPC, for the other services
// that need them. Requests and responses are google.protobuf.Struct, so there is no generated
// code; the field names match the JSON API.
/*

	srv := rpc.NewServer(desk)
	lis,_ := net.Listen("tcp", ":8081")
	go srv.Serve(lis)

	c,_ := rpc.Dial("localhost:8081")
	avail,err := c.Available(ctx, flytau.Pilot, cand)

*/
package rpc

import(
	"errors"
	"fmt"
	"time"

	"golang.org/x/net/context"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/booking"
	"github.com/skypies/flytau/db"
	"github.com/skypies/flytau/sched"
)

const ServiceName = "flytau.Scheduler"

// SchedulerServer is the server API for the flytau.Scheduler service.
type SchedulerServer interface {
	Available(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Roster(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler(method func(SchedulerServer, context.Context, *structpb.Struct) (*structpb.Struct, error), name string) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil { return nil, err }
		if interceptor == nil {
			return method(srv.(SchedulerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server:srv, FullMethod:"/"+ServiceName+"/"+name}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return method(srv.(SchedulerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName:"Available", Handler:unaryHandler(SchedulerServer.Available, "Available")},
		{MethodName:"Roster",    Handler:unaryHandler(SchedulerServer.Roster, "Roster")},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flytau/scheduler",
}

// {{{ Service

// Service implements SchedulerServer on top of a booking desk.
type Service struct {
	Desk *booking.Desk
}

// NewServer returns a grpc server with the scheduler and the standard health service
// registered.
func NewServer(d *booking.Desk, opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	s.RegisterService(&ServiceDesc, &Service{Desk:d})

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return s
}

func (s *Service)Available(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req,cand,err := decodeQuery(in)
	if err != nil { return nil, err }
	kind,err := flytau.ParseResourceKind(stringField(in, "kind"))
	if err != nil { return nil, status.Error(codes.InvalidArgument, err.Error()) }

	avail,err := s.Desk.Available(ctx, req, kind, cand)
	if err != nil { return nil, statusFor(err) }

	return structpb.NewStruct(map[string]interface{}{
		"available": availabilityValues(avail),
	})
}

func (s *Service)Roster(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req,cand,err := decodeQuery(in)
	if err != nil { return nil, err }

	r,err := s.Desk.Roster(ctx, req, cand)
	if err != nil { return nil, statusFor(err) }

	return structpb.NewStruct(map[string]interface{}{
		"origin": string(r.Origin),
		"destination": string(r.Destination),
		"departure_utc": r.DepartureUTC.UTC().Format(time.RFC3339),
		"arrival_utc": r.ArrivalUTC.UTC().Format(time.RFC3339),
		"minutes": r.Minutes,
		"class": r.Class.String(),
		"pilots_needed": r.Crew.Pilots,
		"attendants_needed": r.Crew.Attendants,
		"staffable": r.Staffable(),
		"aircraft": availabilityValues(r.Aircraft),
		"pilots": availabilityValues(r.Pilots),
		"attendants": availabilityValues(r.Attendants),
	})
}

// }}}

// {{{ decodeQuery, statusFor

func stringField(in *structpb.Struct, name string) string {
	if v,exists := in.GetFields()[name]; exists {
		return v.GetStringValue()
	}
	return ""
}

func decodeQuery(in *structpb.Struct) (booking.Request, flytau.Candidate, error) {
	operator := stringField(in, "operator")
	if operator == "" { operator = "rpc" }
	req := booking.NewRequest(operator)

	cand := flytau.Candidate{
		Origin: flytau.NewAirport(stringField(in, "origin")),
		Destination: flytau.NewAirport(stringField(in, "destination")),
	}
	t,err := time.Parse(time.RFC3339, stringField(in, "departure"))
	if err != nil {
		return req, cand, status.Error(codes.InvalidArgument, fmt.Sprintf("departure: %v", err))
	}
	cand.DepartureUTC = t.UTC()

	if cand.Origin.IsZero() || cand.Destination.IsZero() || cand.DepartureUTC.IsZero() {
		return req, cand, status.Error(codes.InvalidArgument, "need origin, destination and departure")
	}
	return req, cand, nil
}

func statusFor(err error) error {
	var ce *sched.ConflictError
	switch {
	case errors.Is(err, sched.ErrUnroutable): return status.Error(codes.FailedPrecondition, err.Error())
	case sched.IsRetryable(err):              return status.Error(codes.Aborted, err.Error())
	case errors.As(err, &ce):                 return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, db.ErrNotFound):      return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded): return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):    return status.Error(codes.Canceled, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// }}}
// {{{ availabilityValues

func availabilityValues(avail []sched.Availability) []interface{} {
	ret := []interface{}{}
	for _,a := range avail {
		m := map[string]interface{}{
			"resource": a.ResourceRef.String(),
			"display_name": a.DisplayName,
			"capability": a.Capability(),
			"home_base": a.Prior.HomeBase,
			"location": string(a.Prior.Location),
		}
		if !a.Prior.HomeBase {
			m["prior_flight"] = a.Prior.FlightID
			m["prior_origin"] = string(a.Prior.Origin)
			m["prior_arrival_utc"] = a.Prior.ArrivalUTC.UTC().Format(time.RFC3339)
		}
		ret = append(ret, m)
	}
	return ret
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
