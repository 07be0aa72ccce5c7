package models

type CreatePostRequest struct {
	Title     string `json:"title" validate:"required,max=300"`
	Body      string `json:"body" validate:"required"`
	Published bool   `json:"published"`
}

type UpdatePostRequest struct {
	Title     string `json:"title" validate:"required,max=300"`
	Body      string `json:"body" validate:"required"`
	Published bool   `json:"published"`
}

type SubmitCommentRequest struct {
	Author string `json:"author" validate:"required,max=100"`
	Body   string `json:"body" validate:"required,max=5000"`
}

type PostList struct {
	Posts []*Post `json:"posts"`
	Total int     `json:"total"`
}

type CommentList struct {
	Comments []*Comment `json:"comments"`
	Total    int        `json:"total"`
}
