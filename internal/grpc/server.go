package grpc

import (
	"context"
	"errors"

	"socialnet/chat-service/internal/models"
	"socialnet/chat-service/internal/service"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	pb "github.com/kegazani/metachat-proto/chat"
)

// MetadataUserID carries the acting user for calls whose request message
// has no user field.
const MetadataUserID = "x-user-id"

type ChatServer struct {
	pb.UnimplementedChatServiceServer
	service service.ChatService
	logger  *logrus.Logger
}

func NewChatServer(svc service.ChatService, logger *logrus.Logger) *ChatServer {
	return &ChatServer{
		service: svc,
		logger:  logger,
	}
}

func (s *ChatServer) CreateChat(ctx context.Context, req *pb.CreateChatRequest) (*pb.CreateChatResponse, error) {
	s.logger.WithFields(logrus.Fields{
		"user_id1": req.UserId1,
		"user_id2": req.UserId2,
	}).Debug("Creating chat via gRPC")

	chat, err := s.service.GetOrCreateChat(ctx, req.UserId1, req.UserId2)
	if err != nil {
		return nil, s.toStatus(err, "failed to create chat")
	}

	return &pb.CreateChatResponse{
		Chat: chatToProto(chat),
	}, nil
}

func (s *ChatServer) GetChat(ctx context.Context, req *pb.GetChatRequest) (*pb.GetChatResponse, error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}

	chat, err := s.service.GetChat(ctx, req.ChatId, userID)
	if err != nil {
		return nil, s.toStatus(err, "failed to get chat")
	}

	return &pb.GetChatResponse{
		Chat: chatToProto(chat),
	}, nil
}

func (s *ChatServer) GetUserChats(ctx context.Context, req *pb.GetUserChatsRequest) (*pb.GetUserChatsResponse, error) {
	summaries, err := s.service.GetUserChats(ctx, req.UserId)
	if err != nil {
		return nil, s.toStatus(err, "failed to get user chats")
	}

	return &pb.GetUserChatsResponse{
		Chats: lo.Map(summaries, func(item *models.ChatSummary, _ int) *pb.Chat {
			return &pb.Chat{
				Id:        item.ID,
				UserId1:   item.UserID1,
				UserId2:   item.UserID2,
				CreatedAt: timestamppb.New(item.CreatedAt),
				UpdatedAt: timestamppb.New(item.UpdatedAt),
			}
		}),
	}, nil
}

func (s *ChatServer) SendMessage(ctx context.Context, req *pb.SendMessageRequest) (*pb.SendMessageResponse, error) {
	msg, err := s.service.SendMessage(ctx, req.ChatId, req.SenderId, req.Content)
	if err != nil {
		return nil, s.toStatus(err, "failed to send message")
	}

	return &pb.SendMessageResponse{
		Message: messageToProto(msg),
	}, nil
}

// GetChatMessages pages backwards with BeforeMessageId. Like the HTTP
// history endpoint it marks the caller's received messages as delivered.
func (s *ChatServer) GetChatMessages(ctx context.Context, req *pb.GetChatMessagesRequest) (*pb.GetChatMessagesResponse, error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}

	messages, err := s.service.GetChatMessagesBefore(ctx, req.ChatId, userID, int(req.Limit), req.BeforeMessageId)
	if err != nil {
		return nil, s.toStatus(err, "failed to get chat messages")
	}

	return &pb.GetChatMessagesResponse{
		Messages: lo.Map(messages, func(item *models.Message, _ int) *pb.Message {
			return messageToProto(item)
		}),
	}, nil
}

func (s *ChatServer) MarkMessagesAsRead(ctx context.Context, req *pb.MarkMessagesAsReadRequest) (*pb.MarkMessagesAsReadResponse, error) {
	count, err := s.service.MarkMessagesAsRead(ctx, req.ChatId, req.UserId)
	if err != nil {
		return nil, s.toStatus(err, "failed to mark messages as read")
	}

	return &pb.MarkMessagesAsReadResponse{
		MarkedCount: int32(count),
	}, nil
}

func (s *ChatServer) toStatus(err error, op string) error {
	switch {
	case errors.Is(err, models.ErrCannotChatWithSelf), errors.Is(err, models.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, models.ErrChatNotFound), errors.Is(err, models.ErrUserNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, models.ErrNotParticipant):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.WithError(err).Error(op)
		return status.Errorf(codes.Internal, "%s", op)
	}
}

func actingUser(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	values := md.Get(MetadataUserID)
	if len(values) == 0 || values[0] == "" {
		return "", status.Errorf(codes.Unauthenticated, "missing %s", MetadataUserID)
	}
	return values[0], nil
}

func chatToProto(chat *models.Chat) *pb.Chat {
	return &pb.Chat{
		Id:        chat.ID,
		UserId1:   chat.UserID1,
		UserId2:   chat.UserID2,
		CreatedAt: timestamppb.New(chat.CreatedAt),
		UpdatedAt: timestamppb.New(chat.UpdatedAt),
	}
}

func messageToProto(msg *models.Message) *pb.Message {
	protoMsg := &pb.Message{
		Id:        msg.ID,
		ChatId:    msg.ChatID,
		SenderId:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: timestamppb.New(msg.CreatedAt),
	}

	if msg.ReadAt != nil {
		protoMsg.ReadAt = timestamppb.New(*msg.ReadAt)
	}

	return protoMsg
}
