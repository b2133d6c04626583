package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "talentdesk.v1.InterviewsService"

// InterviewsServiceServer is the server side of talentdesk.v1.InterviewsService.
type InterviewsServiceServer interface {
	ListInterviews(context.Context, *ListInterviewsRequest) (*ListInterviewsResponse, error)
	GetInterview(context.Context, *GetInterviewRequest) (*InterviewResponse, error)
	CreateInterview(context.Context, *CreateInterviewRequest) (*InterviewResponse, error)
	UpdateInterview(context.Context, *UpdateInterviewRequest) (*InterviewResponse, error)
	ChangeInterviewStatus(context.Context, *ChangeInterviewStatusRequest) (*InterviewResponse, error)
	DeleteInterview(context.Context, *DeleteInterviewRequest) (*DeleteInterviewResponse, error)
	CheckConflicts(context.Context, *CheckConflictsRequest) (*CheckConflictsResponse, error)
	SuggestSlots(context.Context, *SuggestSlotsRequest) (*SuggestSlotsResponse, error)
}

var InterviewsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InterviewsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListInterviews", InterviewsServiceServer.ListInterviews),
		unary("GetInterview", InterviewsServiceServer.GetInterview),
		unary("CreateInterview", InterviewsServiceServer.CreateInterview),
		unary("UpdateInterview", InterviewsServiceServer.UpdateInterview),
		unary("ChangeInterviewStatus", InterviewsServiceServer.ChangeInterviewStatus),
		unary("DeleteInterview", InterviewsServiceServer.DeleteInterview),
		unary("CheckConflicts", InterviewsServiceServer.CheckConflicts),
		unary("SuggestSlots", InterviewsServiceServer.SuggestSlots),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "talentdesk/v1/interviews",
}

func RegisterInterviewsServiceServer(s grpc.ServiceRegistrar, srv InterviewsServiceServer) {
	s.RegisterService(&InterviewsServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary[Req, Resp any](method string, call func(InterviewsServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl := srv.(InterviewsServiceServer)
			if interceptor == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(impl, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// InterviewsClient calls talentdesk.v1.InterviewsService with the JSON codec.
type InterviewsClient struct {
	cc grpc.ClientConnInterface
}

func NewInterviewsClient(cc grpc.ClientConnInterface) *InterviewsClient {
	return &InterviewsClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *InterviewsClient, method string, req any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, fullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InterviewsClient) ListInterviews(ctx context.Context, req *ListInterviewsRequest, opts ...grpc.CallOption) (*ListInterviewsResponse, error) {
	return invoke[ListInterviewsResponse](ctx, c, "ListInterviews", req, opts...)
}

func (c *InterviewsClient) GetInterview(ctx context.Context, req *GetInterviewRequest, opts ...grpc.CallOption) (*InterviewResponse, error) {
	return invoke[InterviewResponse](ctx, c, "GetInterview", req, opts...)
}

func (c *InterviewsClient) CreateInterview(ctx context.Context, req *CreateInterviewRequest, opts ...grpc.CallOption) (*InterviewResponse, error) {
	return invoke[InterviewResponse](ctx, c, "CreateInterview", req, opts...)
}

func (c *InterviewsClient) UpdateInterview(ctx context.Context, req *UpdateInterviewRequest, opts ...grpc.CallOption) (*InterviewResponse, error) {
	return invoke[InterviewResponse](ctx, c, "UpdateInterview", req, opts...)
}

func (c *InterviewsClient) ChangeInterviewStatus(ctx context.Context, req *ChangeInterviewStatusRequest, opts ...grpc.CallOption) (*InterviewResponse, error) {
	return invoke[InterviewResponse](ctx, c, "ChangeInterviewStatus", req, opts...)
}

func (c *InterviewsClient) DeleteInterview(ctx context.Context, req *DeleteInterviewRequest, opts ...grpc.CallOption) (*DeleteInterviewResponse, error) {
	return invoke[DeleteInterviewResponse](ctx, c, "DeleteInterview", req, opts...)
}

func (c *InterviewsClient) CheckConflicts(ctx context.Context, req *CheckConflictsRequest, opts ...grpc.CallOption) (*CheckConflictsResponse, error) {
	return invoke[CheckConflictsResponse](ctx, c, "CheckConflicts", req, opts...)
}

func (c *InterviewsClient) SuggestSlots(ctx context.Context, req *SuggestSlotsRequest, opts ...grpc.CallOption) (*SuggestSlotsResponse, error) {
	return invoke[SuggestSlotsResponse](ctx, c, "SuggestSlots", req, opts...)
}
