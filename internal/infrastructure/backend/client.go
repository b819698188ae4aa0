package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ServiceName is the fully-qualified gRPC service of the library backend.
const ServiceName = "library.LibraryService"

// Library is the full set of backend calls the gateway makes.
// Every call is single-shot: no retries, mutations are never replayed.
type Library interface {
	AuthenticateUser(ctx context.Context, req AuthenticateUserRequest) (*AuthenticateUserResponse, error)

	GetBooks(ctx context.Context, req GetBooksRequest) (*GetBooksResponse, error)
	CreateBook(ctx context.Context, req CreateBookRequest) (*BookResponse, error)
	UpdateBook(ctx context.Context, req UpdateBookRequest) (*StatusResponse, error)
	DeleteBook(ctx context.Context, req DeleteBookRequest) (*StatusResponse, error)

	GetUsers(ctx context.Context, req GetUsersRequest) (*GetUsersResponse, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) (*StatusResponse, error)
	GetUserStats(ctx context.Context, req GetUserStatsRequest) (*GetUserStatsResponse, error)

	GetTransactions(ctx context.Context, req GetTransactionsRequest) (*GetTransactionsResponse, error)
	GetUserTransactions(ctx context.Context, req GetUserTransactionsRequest) (*GetTransactionsResponse, error)
	IssueBook(ctx context.Context, req IssueBookRequest) (*TransactionResponse, error)
	ReturnBook(ctx context.Context, req ReturnBookRequest) (*TransactionResponse, error)

	CreateUserBookRequest(ctx context.Context, req CreateUserBookRequestRequest) (*BookRequestResponse, error)
	GetBookRequests(ctx context.Context, req GetBookRequestsRequest) (*GetBookRequestsResponse, error)
	ApproveBookRequest(ctx context.Context, req ApproveBookRequestRequest) (*StatusResponse, error)
	RejectBookRequest(ctx context.Context, req RejectBookRequestRequest) (*StatusResponse, error)
}

// Client calls library.LibraryService over gRPC with the JSON codec.
type Client struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
}

var _ Library = (*Client)(nil)

// New wraps an existing connection. A zero timeout leaves deadlines to the caller's context.
func New(conn grpc.ClientConnInterface, timeout time.Duration) *Client {
	return &Client{conn: conn, timeout: timeout}
}

// Dial opens a plaintext connection to host:port. The connection is lazy; no I/O happens here.
func Dial(host, port string, timeout time.Duration) (*Client, error) {
	target := fmt.Sprintf("%s:%s", host, port)
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial backend %s: %w", target, err)
	}
	return New(conn, timeout), nil
}

// State reports the connectivity state of the underlying connection, if known.
func (c *Client) State() string {
	if cc, ok := c.conn.(*grpc.ClientConn); ok {
		return cc.GetState().String()
	}
	return "unknown"
}

func (c *Client) Close() error {
	if cc, ok := c.conn.(*grpc.ClientConn); ok {
		return cc.Close()
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp, grpc.CallContentSubtype(CodecName))
	if err != nil {
		log.Warn().
			Err(err).
			Str("method", method).
			Dur("duration", time.Since(start)).
			Msg("[Backend] call failed")
		return unavailable(method, err)
	}

	log.Debug().
		Str("method", method).
		Dur("duration", time.Since(start)).
		Msg("[Backend] call completed")
	return nil
}

// ================================================
// AUTH
// ================================================

func (c *Client) AuthenticateUser(ctx context.Context, req AuthenticateUserRequest) (*AuthenticateUserResponse, error) {
	resp := new(AuthenticateUserResponse)
	if err := c.invoke(ctx, "AuthenticateUser", req, resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected("AuthenticateUser", resp.Message)
	}
	return resp, nil
}

// ================================================
// BOOKS
// ================================================

func (c *Client) GetBooks(ctx context.Context, req GetBooksRequest) (*GetBooksResponse, error) {
	resp := new(GetBooksResponse)
	if err := c.invoke(ctx, "GetBooks", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) CreateBook(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	resp := new(BookResponse)
	if err := c.invoke(ctx, "CreateBook", req, resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected("CreateBook", resp.Message)
	}
	return resp, nil
}

func (c *Client) UpdateBook(ctx context.Context, req UpdateBookRequest) (*StatusResponse, error) {
	return c.mutate(ctx, "UpdateBook", req)
}

func (c *Client) DeleteBook(ctx context.Context, req DeleteBookRequest) (*StatusResponse, error) {
	return c.mutate(ctx, "DeleteBook", req)
}

// ================================================
// USERS
// ================================================

func (c *Client) GetUsers(ctx context.Context, req GetUsersRequest) (*GetUsersResponse, error) {
	resp := new(GetUsersResponse)
	if err := c.invoke(ctx, "GetUsers", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	resp := new(UserResponse)
	if err := c.invoke(ctx, "CreateUser", req, resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected("CreateUser", resp.Message)
	}
	return resp, nil
}

func (c *Client) UpdateUser(ctx context.Context, req UpdateUserRequest) (*StatusResponse, error) {
	return c.mutate(ctx, "UpdateUser", req)
}

func (c *Client) GetUserStats(ctx context.Context, req GetUserStatsRequest) (*GetUserStatsResponse, error) {
	resp := new(GetUserStatsResponse)
	if err := c.invoke(ctx, "GetUserStats", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ================================================
// TRANSACTIONS
// ================================================

func (c *Client) GetTransactions(ctx context.Context, req GetTransactionsRequest) (*GetTransactionsResponse, error) {
	resp := new(GetTransactionsResponse)
	if err := c.invoke(ctx, "GetTransactions", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetUserTransactions(ctx context.Context, req GetUserTransactionsRequest) (*GetTransactionsResponse, error) {
	resp := new(GetTransactionsResponse)
	if err := c.invoke(ctx, "GetUserTransactions", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) IssueBook(ctx context.Context, req IssueBookRequest) (*TransactionResponse, error) {
	resp := new(TransactionResponse)
	if err := c.invoke(ctx, "IssueBook", req, resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected("IssueBook", resp.Message)
	}
	return resp, nil
}

func (c *Client) ReturnBook(ctx context.Context, req ReturnBookRequest) (*TransactionResponse, error) {
	resp := new(TransactionResponse)
	if err := c.invoke(ctx, "ReturnBook", req, resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected("ReturnBook", resp.Message)
	}
	return resp, nil
}

// ================================================
// BOOK REQUESTS
// ================================================

func (c *Client) CreateUserBookRequest(ctx context.Context, req CreateUserBookRequestRequest) (*BookRequestResponse, error) {
	resp := new(BookRequestResponse)
	if err := c.invoke(ctx, "CreateUserBookRequest", req, resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected("CreateUserBookRequest", resp.Message)
	}
	return resp, nil
}

func (c *Client) GetBookRequests(ctx context.Context, req GetBookRequestsRequest) (*GetBookRequestsResponse, error) {
	resp := new(GetBookRequestsResponse)
	if err := c.invoke(ctx, "GetBookRequests", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ApproveBookRequest(ctx context.Context, req ApproveBookRequestRequest) (*StatusResponse, error) {
	return c.mutate(ctx, "ApproveBookRequest", req)
}

func (c *Client) RejectBookRequest(ctx context.Context, req RejectBookRequestRequest) (*StatusResponse, error) {
	return c.mutate(ctx, "RejectBookRequest", req)
}

func (c *Client) mutate(ctx context.Context, method string, req any) (*StatusResponse, error) {
	resp := new(StatusResponse)
	if err := c.invoke(ctx, method, req, resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(method, resp.Message)
	}
	return resp, nil
}
