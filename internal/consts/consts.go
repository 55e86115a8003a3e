package consts

const (
	ApplicationName    = "Red Social Server"
	ApplicationVersion = "1.0.0"
)

// 通知类型
const (
	NotificationKindFollow  = "follow"
	NotificationKindLike    = "like"
	NotificationKindComment = "comment"
	NotificationKindMention = "mention"
	NotificationKindMessage = "message"
)

// 通知关联实体类型
const (
	NotificationEntityPost    = "post"
	NotificationEntityComment = "comment"
	NotificationEntityFollow  = "follow"
	NotificationEntityMessage = "message"
)

// 好友请求状态
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestDeclined = "declined"
)

// Feed 候选来源标签
const (
	FeedSourceFollowed = "followed"
	FeedSourceTrending = "trending"
	FeedSourceRandom   = "random"
	FeedSourceRecent   = "recent"
)

// Explore 分类
const (
	ExploreCategoryTrending = "trending"
	ExploreCategoryRecent   = "recent"
	ExploreCategoryRandom   = "random"
	ExploreCategoryMixed    = "mixed"
)
