package dto

type KeywordInput struct {
	Name string `json:"name"`
}

type AddKeywordsRequest struct {
	Keywords []KeywordInput `json:"keywords"`
}

type UpdateKeywordRequest struct {
	Keyword struct {
		ID   string  `json:"id" validate:"required"`
		Name *string `json:"name"`
	} `json:"keyword" validate:"required"`
}

type SetupChatbotRequest struct {
	Questions []QuestionInput `json:"questions"`
	Keywords  []KeywordInput  `json:"keywords"`
	Services  []ServiceInput  `json:"services"`
}

type QuestionInput struct {
	Name string `json:"name"`
}

type ServiceInput struct {
	Name string `json:"name"`
}
