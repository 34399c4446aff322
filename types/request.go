package types

type CreateUserRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type BatchCreateUserRequest struct {
	Users []CreateUserRequest `json:"users"`
}

type UpdateUserRequest struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type DeleteUserRequest struct {
	ID string `json:"id"`
}

type GetUserRequest struct {
	ID string `json:"id"`
}

type PaginateUserRequest struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChatRequest struct {
	ChatId  string `json:"chat_id"`
	Message string `json:"message"`
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type IngestRequest struct {
	CorpusDir string `json:"corpus_dir,omitempty"`
}
