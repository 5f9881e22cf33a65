package services

import (
	"context"
	"html/template"

	"songlin/internal/models"
	"songlin/internal/utils"
)

// CommentNode 展示用的评论节点，两层结构：顶层评论带回复列表
type CommentNode struct {
	models.Comment
	BodyHTML template.HTML  `json:"body_html"`
	HasLiked bool           `json:"has_liked"`
	Replies  []*CommentNode `json:"replies"`
}

// TreeService 把平铺的评论记录组装成两层展示结构
type TreeService struct {
	comments CommentStore
	likes    LikeStore
}

func NewTreeService(comments CommentStore, likes LikeStore) *TreeService {
	return &TreeService{comments: comments, likes: likes}
}

// Assemble 组装指定内容的评论树。
// statuses 为空时只取 approved（普通访客视角）；管理后台可以额外传 pending / spam。
// viewerID 非空时为每条评论标注该访客的点赞状态。
// 两层都按 created_at 升序，这是对话顺序，不做热度排序。
func (s *TreeService) Assemble(ctx context.Context, subjectID uint, viewerID *uint, statuses []models.CommentStatus) ([]*CommentNode, error) {
	if len(statuses) == 0 {
		statuses = []models.CommentStatus{models.StatusApproved}
	}

	comments, err := s.comments.ListBySubject(ctx, subjectID, statuses)
	if err != nil {
		return nil, err
	}

	liked := map[uint]bool{}
	if viewerID != nil && len(comments) > 0 {
		ids := make([]uint, len(comments))
		for i, c := range comments {
			ids[i] = c.ID
		}
		liked, err = s.likes.LikedSet(ctx, *viewerID, ids)
		if err != nil {
			return nil, err
		}
	}

	// 先建节点索引，再挂回复。列表按 created_at 升序，顶层一定先于其回复出现，
	// 但父评论可能被状态过滤掉。
	nodes := make(map[uint]*CommentNode, len(comments))
	var roots []*CommentNode
	for i := range comments {
		c := comments[i]
		node := &CommentNode{
			Comment:  c,
			BodyHTML: utils.RenderMarkdown(c.Body),
			HasLiked: liked[c.ID],
		}
		nodes[c.ID] = node

		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.ParentID]
		// 父评论不在结果集，或数据异常导致父评论自己也是回复：
		// 拍平到顶层展示，不能悄悄丢掉
		if !ok || parent.ParentID != nil {
			roots = append(roots, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}

	return roots, nil
}
