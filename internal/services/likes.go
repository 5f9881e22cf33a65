package services

import (
	"context"
)

// LikeService 点赞。计数走数据库原子自增，和封禁命中数一样不做读改写。
type LikeService struct {
	likes    LikeStore
	comments CommentStore
}

func NewLikeService(likes LikeStore, comments CommentStore) *LikeService {
	return &LikeService{likes: likes, comments: comments}
}

// Like 点赞，重复点赞为空操作。返回是否产生变化。
func (s *LikeService) Like(ctx context.Context, userID uint, commentCid string) (bool, error) {
	comment, err := s.comments.GetByCid(ctx, commentCid)
	if err != nil {
		return false, err
	}
	created, err := s.likes.Add(ctx, userID, comment.ID)
	if err != nil || !created {
		return false, err
	}
	return true, s.comments.IncrLikeCount(ctx, comment.ID, 1)
}

// Unlike 取消点赞。没点过时为空操作。
func (s *LikeService) Unlike(ctx context.Context, userID uint, commentCid string) (bool, error) {
	comment, err := s.comments.GetByCid(ctx, commentCid)
	if err != nil {
		return false, err
	}
	removed, err := s.likes.Remove(ctx, userID, comment.ID)
	if err != nil || !removed {
		return false, err
	}
	return true, s.comments.IncrLikeCount(ctx, comment.ID, -1)
}
