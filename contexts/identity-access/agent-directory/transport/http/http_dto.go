package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expires_at"`
	User      UserDTO `json:"user"`
}

type UserDTO struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type CreateAgentRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type CreateAgentResponse struct {
	Message string  `json:"message"`
	Agent   UserDTO `json:"agent"`
}

type ListAgentsResponse struct {
	Items []UserDTO `json:"items"`
}

type DeleteAgentResponse struct {
	Message string `json:"message"`
}
