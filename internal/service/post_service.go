package service

import (
	"context"
	"fmt"
	"time"

	"campushub/internal/model"
	"campushub/internal/pkg"
	"campushub/internal/repository/mysql"
	"campushub/internal/repository/redis"

	"gorm.io/gorm"
)

// PostService 帖子/评论/点赞。所有变更先过AuthzService
type PostService struct {
	posts      *mysql.PostRepository
	comments   *mysql.CommentRepository
	upvotes    *mysql.UpvoteRepository
	comMembers *mysql.CommunityMemberRepository
	grpMembers *mysql.GroupMemberRepository
	users      *mysql.UserRepository
	authz      *AuthzService
	notify     *NotificationService

	// 缓存可缺省（测试/本地无redis时传nil）
	cache *redis.UpvoteCacheRepository
	lock  *redis.DistLock
}

func NewPostService(db *gorm.DB, authz *AuthzService, notify *NotificationService, cache *redis.UpvoteCacheRepository, lock *redis.DistLock) *PostService {
	return &PostService{
		posts:      &mysql.PostRepository{DB: db},
		comments:   &mysql.CommentRepository{DB: db},
		upvotes:    &mysql.UpvoteRepository{DB: db},
		comMembers: &mysql.CommunityMemberRepository{DB: db},
		grpMembers: &mysql.GroupMemberRepository{DB: db},
		users:      &mysql.UserRepository{DB: db},
		authz:      authz,
		notify:     notify,
		cache:      cache,
		lock:       lock,
	}
}

// Create 发帖。scope至多一个；scope内发帖要求成员资格；
// 公告帖要求发帖时已具备该scope的manager权限
func (s *PostService) Create(ctx context.Context, actorID, communityID, groupID uint64, title, content string, isAnnouncement bool) (*model.Post, error) {
	if title == "" {
		return nil, pkg.E(pkg.KindPrecondition, "post", 0, "title required")
	}
	if communityID != 0 && groupID != 0 {
		return nil, pkg.E(pkg.KindPrecondition, "post", 0, "post may target a community or a group, not both")
	}

	if communityID != 0 {
		ok, err := s.comMembers.IsMember(ctx, communityID, actorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, pkg.E(pkg.KindUnauthorized, "community", communityID, "not a member")
		}
	}
	if groupID != 0 {
		ok, err := s.grpMembers.IsMember(ctx, groupID, actorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, pkg.E(pkg.KindUnauthorized, "group", groupID, "not a member")
		}
	}

	if isAnnouncement {
		actor, err := s.users.FindByID(actorID)
		if err != nil {
			return nil, err
		}
		ok, err := s.authz.CanCreateAnnouncement(ctx, actor, communityID, groupID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, pkg.E(pkg.KindUnauthorized, "post", 0, "manager authority required for announcement")
		}
	}

	post := &model.Post{
		CommunityID:    communityID,
		GroupID:        groupID,
		AuthorID:       actorID,
		Title:          title,
		Content:        content,
		IsAnnouncement: isAnnouncement,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	if isAnnouncement {
		s.fanOutAnnouncement(ctx, post)
	}
	return post, nil
}

// fanOutAnnouncement 通知scope内全部成员（作者除外），best-effort
func (s *PostService) fanOutAnnouncement(ctx context.Context, post *model.Post) {
	var ids []uint64
	var err error
	if post.GroupID != 0 {
		ids, err = s.grpMembers.MemberIDs(ctx, post.GroupID)
	} else if post.CommunityID != 0 {
		ids, err = s.comMembers.MemberIDs(ctx, post.CommunityID)
	}
	if err != nil || len(ids) == 0 {
		return
	}
	s.notify.FanOut(ctx, ids, post.AuthorID, "announcement",
		"新公告："+post.Title, postLink(post.ID))
}

func (s *PostService) Get(ctx context.Context, id uint64) (*model.Post, error) {
	return s.posts.FindByID(ctx, id)
}

// Delete 软删除；作者/admin/scope manager可删
func (s *PostService) Delete(ctx context.Context, actorID, postID uint64) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.requireMutatePost(ctx, actorID, post); err != nil {
		return err
	}
	return s.posts.Delete(ctx, postID)
}

func (s *PostService) ListByCommunity(ctx context.Context, communityID uint64, page, size int) ([]model.Post, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	return s.posts.ListByCommunity(ctx, communityID, (page-1)*size, size)
}

func (s *PostService) ListByGroup(ctx context.Context, groupID uint64, page, size int) ([]model.Post, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	return s.posts.ListByGroup(ctx, groupID, (page-1)*size, size)
}

// ListByCommunityCursor 游标分页：首页不传游标（或传0）
func (s *PostService) ListByCommunityCursor(ctx context.Context, communityID uint64, lastID uint64, lastCreatedAt int64, size int) ([]model.Post, uint64, int64, error) {
	if size <= 0 || size > 50 {
		size = 20
	}
	list, err := s.posts.ListByCommunityCursor(ctx, communityID, lastID, lastCreatedAt, size)
	if err != nil {
		return nil, 0, 0, err
	}
	var nextID uint64
	var nextTS int64
	if len(list) > 0 {
		last := list[len(list)-1]
		nextID = last.ID
		nextTS = last.CreatedAt.Unix()
	}
	return list, nextID, nextTS, nil
}

// AddComment 评论人须是scope成员（无scope帖不限制）；通知帖主，跳过自评
func (s *PostService) AddComment(ctx context.Context, actorID, postID uint64, content string) (*model.Comment, error) {
	if content == "" {
		return nil, pkg.E(pkg.KindPrecondition, "comment", 0, "content required")
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.CommunityID != 0 {
		ok, err := s.comMembers.IsMember(ctx, post.CommunityID, actorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, pkg.E(pkg.KindUnauthorized, "community", post.CommunityID, "not a member")
		}
	}
	if post.GroupID != 0 {
		ok, err := s.grpMembers.IsMember(ctx, post.GroupID, actorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, pkg.E(pkg.KindUnauthorized, "group", post.GroupID, "not a member")
		}
	}

	comment := &model.Comment{PostID: postID, AuthorID: actorID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.notify.Notify(ctx, post.AuthorID, actorID, "comment",
		"你的帖子「"+post.Title+"」有了新评论", postLink(postID))
	return comment, nil
}

// DeleteComment 评论作者/admin/帖主/scope manager可删
func (s *PostService) DeleteComment(ctx context.Context, actorID, commentID uint64) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	post, err := s.posts.FindByID(ctx, comment.PostID)
	if err != nil {
		return err
	}
	actor, err := s.users.FindByID(actorID)
	if err != nil {
		return err
	}
	ok, err := s.authz.CanMutateComment(ctx, actor, post, comment)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.E(pkg.KindUnauthorized, "comment", commentID, "not allowed")
	}
	return s.comments.Delete(ctx, commentID)
}

func (s *PostService) ListComments(ctx context.Context, postID uint64, page, size int) ([]model.Comment, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 50
	}
	return s.comments.ListByPost(ctx, postID, (page-1)*size, size)
}

// Upvote 先写库；成功后通知帖主（跳过自赞），再best-effort更新缓存
func (s *PostService) Upvote(ctx context.Context, actorID, postID uint64) (bool, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return false, err
	}
	changed, err := s.upvotes.Upvote(ctx, actorID, postID)
	if err != nil || !changed {
		if err == nil && s.cache != nil {
			s.cache.WarmIsUpvoted(ctx, actorID, postID, true)
		}
		return changed, err
	}

	s.notify.Notify(ctx, post.AuthorID, actorID, "upvote",
		"你的帖子「"+post.Title+"」收到了一个赞", postLink(postID))

	if s.cache != nil {
		_ = s.cache.AddUpvote(ctx, actorID, postID)
	}
	return true, nil
}

// RemoveUpvote 取消点赞，幂等
func (s *PostService) RemoveUpvote(ctx context.Context, actorID, postID uint64) (bool, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return false, err
	}
	changed, err := s.upvotes.RemoveUpvote(ctx, actorID, postID)
	if err != nil || !changed {
		if err == nil && s.cache != nil {
			s.cache.WarmIsUpvoted(ctx, actorID, postID, false)
		}
		return changed, err
	}
	if s.cache != nil {
		_ = s.cache.RemoveUpvote(ctx, actorID, postID)
	}
	return true, nil
}

func (s *PostService) IsUpvoted(ctx context.Context, actorID, postID uint64) (bool, error) {
	if s.cache != nil {
		if b, ok, err := s.cache.IsUpvotedCached(ctx, actorID, postID); err == nil && ok {
			return b, nil
		}
	}
	b, err := s.upvotes.IsUpvoted(ctx, actorID, postID)
	if err == nil && s.cache != nil {
		s.cache.WarmIsUpvoted(ctx, actorID, postID, b)
	}
	return b, err
}

// UpvoteCount 缓存miss时加锁回源重建，拿不到锁短暂退避后直查
func (s *PostService) UpvoteCount(ctx context.Context, actorID, postID uint64) (int64, error) {
	if s.cache == nil {
		return s.upvotes.Count(ctx, postID)
	}
	if v, ok, err := s.cache.GetCountCached(ctx, postID); err == nil && ok {
		return v, nil
	}

	token := fmt.Sprintf("%d-%d-%d", actorID, postID, time.Now().UnixNano())
	got, _ := s.lock.Acquire(ctx, postID, token)
	if got {
		defer func() { _ = s.lock.Release(ctx, postID, token) }()

		// 双检
		if v, ok, err := s.cache.GetCountCached(ctx, postID); err == nil && ok {
			return v, nil
		}
		v, err := s.upvotes.Count(ctx, postID)
		if err != nil {
			return 0, err
		}
		_ = s.cache.SetCount(ctx, postID, v)
		return v, nil
	}

	// 没拿到锁，退避后再读一次缓存，避免全体打DB
	time.Sleep(50 * time.Millisecond)
	if v, ok, err := s.cache.GetCountCached(ctx, postID); err == nil && ok {
		return v, nil
	}
	return s.upvotes.Count(ctx, postID)
}

func (s *PostService) requireMutatePost(ctx context.Context, actorID uint64, post *model.Post) error {
	actor, err := s.users.FindByID(actorID)
	if err != nil {
		return err
	}
	ok, err := s.authz.CanMutatePost(ctx, actor, post)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.E(pkg.KindUnauthorized, "post", post.ID, "not allowed")
	}
	return nil
}
