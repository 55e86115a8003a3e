package service

import (
	"context"
	"errors"
	"fmt"
	"red-social-server/internal/common"
	"red-social-server/internal/consts"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	dmPageSize       = 50
	typingExpiry     = 10 * time.Second
	maxMessageLength = 2000
)

// ConversationView 会话列表项
type ConversationView struct {
	ID           uint           `json:"id"`
	Participants []UserBrief    `json:"participants"`
	LastMessage  *model.Message `json:"last_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// OpenConversation 查找或创建两人会话。
// PairKey 上的唯一索引保证双方并发发起首条消息时落到同一条记录。
func OpenConversation(uid, otherID uint) (*model.Conversation, error) {
	if uid == otherID {
		return nil, common.NewServiceError(common.ErrorCodeValidation, "不能与自己对话")
	}
	var other model.User
	if err := db.DB.First(&other, otherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewServiceError(common.ErrorCodeNotFound, "用户不存在")
		}
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询用户失败")
	}

	pairKey := model.ConversationPairKey(uid, otherID)
	conv := model.Conversation{PairKey: pairKey}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&conv).Error; err != nil {
			return err
		}
		// 冲突时 Create 不回填 ID，需要按 PairKey 再查一次
		if conv.ID == 0 {
			if err := tx.Where("pair_key = ?", pairKey).First(&conv).Error; err != nil {
				return err
			}
		}
		for _, participant := range []uint{uid, otherID} {
			p := model.ConversationParticipant{ConversationID: conv.ID, UserID: participant}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "创建会话失败")
	}
	return &conv, nil
}

// ListConversations 当前用户参与的全部会话，带参与者与最新一条消息
func ListConversations(uid uint) ([]ConversationView, error) {
	var mine []model.ConversationParticipant
	if err := db.DB.Where("user_id = ?", uid).Find(&mine).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询会话失败")
	}
	if len(mine) == 0 {
		return []ConversationView{}, nil
	}

	convIDs := make([]uint, 0, len(mine))
	for i := range mine {
		convIDs = append(convIDs, mine[i].ConversationID)
	}

	var participants []model.ConversationParticipant
	if err := db.DB.Preload("User").Where("conversation_id IN ?", convIDs).
		Find(&participants).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询会话失败")
	}

	var convs []model.Conversation
	if err := db.DB.Where("id IN ?", convIDs).Find(&convs).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询会话失败")
	}

	views := make([]ConversationView, 0, len(convs))
	for i := range convs {
		view := ConversationView{ID: convs[i].ID, CreatedAt: convs[i].CreatedAt}
		for j := range participants {
			if participants[j].ConversationID == convs[i].ID {
				view.Participants = append(view.Participants, NewUserBrief(&participants[j].User))
			}
		}
		var last model.Message
		err := db.DB.Where("conversation_id = ?", convs[i].ID).
			Order("created_at DESC").First(&last).Error
		if err == nil {
			view.LastMessage = &last
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询消息失败")
		}
		views = append(views, view)
	}

	// 最近有消息的会话靠前
	for i := 0; i < len(views); i++ {
		for j := i + 1; j < len(views); j++ {
			if conversationSortKey(&views[j]).After(conversationSortKey(&views[i])) {
				views[i], views[j] = views[j], views[i]
			}
		}
	}
	return views, nil
}

func conversationSortKey(v *ConversationView) time.Time {
	if v.LastMessage != nil {
		return v.LastMessage.CreatedAt
	}
	return v.CreatedAt
}

// ListMessages 取会话最近 50 条消息，按时间正序返回
func ListMessages(uid, conversationID uint) ([]model.Message, error) {
	if err := requireParticipant(uid, conversationID); err != nil {
		return nil, err
	}

	var messages []model.Message
	err := db.DB.Preload("Sender").Preload("SharedPost").Preload("SharedPost.User").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").Limit(dmPageSize).
		Find(&messages).Error
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询消息失败")
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// SendMessage 在已有会话中发消息，可附带分享的帖子
func SendMessage(uid, conversationID uint, body string, sharedPostID *uint) (*model.Message, error) {
	if err := requireParticipant(uid, conversationID); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" && sharedPostID == nil {
		return nil, common.NewServiceError(common.ErrorCodeValidation, "消息内容不能为空")
	}
	if len(body) > maxMessageLength {
		return nil, common.NewServiceError(common.ErrorCodeValidation, "消息内容过长")
	}
	if sharedPostID != nil {
		var count int64
		if err := db.DB.Model(&model.Post{}).Where("id = ?", *sharedPostID).
			Count(&count).Error; err != nil || count == 0 {
			return nil, common.NewServiceError(common.ErrorCodeNotFound, "分享的帖子不存在")
		}
	}

	msg := model.Message{
		ConversationID: conversationID,
		SenderID:       uid,
		Body:           body,
		SharedPostID:   sharedPostID,
	}
	if err := db.DB.Create(&msg).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "发送消息失败")
	}

	// 通知会话里的另一方
	var others []model.ConversationParticipant
	if err := db.DB.Where("conversation_id = ? AND user_id <> ?", conversationID, uid).
		Find(&others).Error; err == nil {
		for i := range others {
			notify(others[i].UserID, uid, consts.NotificationKindMessage,
				consts.NotificationEntityMessage, msg.ID)
		}
	}

	if err := db.DB.Preload("Sender").Preload("SharedPost").Preload("SharedPost.User").
		First(&msg, msg.ID).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询消息失败")
	}
	return &msg, nil
}

// SendDirect 按用户名直发：自动打开会话再发送
func SendDirect(uid uint, username, body string, sharedPostID *uint) (*model.Message, error) {
	target, err := findUserByUsername(username)
	if err != nil {
		return nil, err
	}
	conv, err := OpenConversation(uid, target.ID)
	if err != nil {
		return nil, err
	}
	return SendMessage(uid, conv.ID, body, sharedPostID)
}

// 正在输入状态。Redis 可用时跨实例共享，否则退化为进程内缓存。
var typingLocal sync.Map // key -> expiresAt time.Time

func typingKey(conversationID, uid uint) string {
	return RedisKey("typing", fmt.Sprintf("%d", conversationID), fmt.Sprintf("%d", uid))
}

// SetTyping 标记用户在会话中正在输入，10 秒后自动过期
func SetTyping(uid, conversationID uint) error {
	if err := requireParticipant(uid, conversationID); err != nil {
		return err
	}
	if rdb := GetRedisClient(); rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return rdb.Set(ctx, typingKey(conversationID, uid), "1", typingExpiry).Err()
	}
	typingLocal.Store(typingKey(conversationID, uid), time.Now().Add(typingExpiry))
	return nil
}

// TypingUsers 会话中当前正在输入的用户 ID（不含查询者自己）
func TypingUsers(uid, conversationID uint) ([]uint, error) {
	if err := requireParticipant(uid, conversationID); err != nil {
		return nil, err
	}

	var participants []model.ConversationParticipant
	if err := db.DB.Where("conversation_id = ? AND user_id <> ?", conversationID, uid).
		Find(&participants).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询会话失败")
	}

	typing := []uint{}
	rdb := GetRedisClient()
	for i := range participants {
		other := participants[i].UserID
		key := typingKey(conversationID, other)
		if rdb != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			n, err := rdb.Exists(ctx, key).Result()
			cancel()
			if err == nil && n > 0 {
				typing = append(typing, other)
			}
			continue
		}
		if v, ok := typingLocal.Load(key); ok {
			if expires, ok := v.(time.Time); ok && expires.After(time.Now()) {
				typing = append(typing, other)
			} else {
				typingLocal.Delete(key)
			}
		}
	}
	return typing, nil
}

func requireParticipant(uid, conversationID uint) error {
	var count int64
	err := db.DB.Model(&model.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, uid).
		Count(&count).Error
	if err != nil {
		return common.NewServiceError(common.ErrorCodeRetrieval, "查询会话失败")
	}
	if count == 0 {
		return common.NewServiceError(common.ErrorCodeForbidden, "你不在该会话中")
	}
	return nil
}
