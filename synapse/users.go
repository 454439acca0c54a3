// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"context"

	"github.com/bureau-foundation/synadmin/lib/ref"
)

// ThreePID is a third-party identifier (email, phone) bound to an account.
type ThreePID struct {
	Medium      string     `json:"medium"`
	Address     string     `json:"address"`
	AddedAt     *Timestamp `json:"added_at,omitempty"`
	ValidatedAt *Timestamp `json:"validated_at,omitempty"`
}

// ExternalID links an account to an SSO provider.
type ExternalID struct {
	AuthProvider string `json:"auth_provider"`
	ExternalID   string `json:"external_id"`
}

// User is an account as the user admin API describes it.
type User struct {
	Name         ref.UserID   `json:"name"`
	DisplayName  *string      `json:"displayname,omitempty"`
	AvatarURL    *string      `json:"avatar_url,omitempty"`
	Admin        bool         `json:"admin"`
	Deactivated  bool         `json:"deactivated"`
	IsGuest      bool         `json:"is_guest,omitempty"`
	Erased       bool         `json:"erased,omitempty"`
	ShadowBanned bool         `json:"shadow_banned,omitempty"`
	Locked       bool         `json:"locked,omitempty"`
	Suspended    bool         `json:"suspended,omitempty"`
	UserType     *string      `json:"user_type,omitempty"`
	AppserviceID *string      `json:"appservice_id,omitempty"`
	CreationTS   *Timestamp   `json:"creation_ts,omitempty"`
	LastSeenTS   *Timestamp   `json:"last_seen_ts,omitempty"`
	ThreePIDs    []ThreePID   `json:"threepids,omitempty"`
	ExternalIDs  []ExternalID `json:"external_ids,omitempty"`
}

// UserOrder is the sort key of the user listing.
type UserOrder string

const (
	UserOrderName         UserOrder = "name"
	UserOrderIsGuest      UserOrder = "is_guest"
	UserOrderAdmin        UserOrder = "admin"
	UserOrderUserType     UserOrder = "user_type"
	UserOrderDeactivated  UserOrder = "deactivated"
	UserOrderShadowBanned UserOrder = "shadow_banned"
	UserOrderDisplayName  UserOrder = "displayname"
	UserOrderAvatarURL    UserOrder = "avatar_url"
	UserOrderCreationTS   UserOrder = "creation_ts"
	UserOrderLastSeenTS   UserOrder = "last_seen_ts"
)

// UserOrders lists every UserOrder.
var UserOrders = []UserOrder{
	UserOrderName, UserOrderIsGuest, UserOrderAdmin, UserOrderUserType,
	UserOrderDeactivated, UserOrderShadowBanned, UserOrderDisplayName,
	UserOrderAvatarURL, UserOrderCreationTS, UserOrderLastSeenTS,
}

// UsersQuery filters, sorts, and pages the user listing.
type UsersQuery struct {
	From  *int
	Limit *int
	// UserID matches the localpart of user IDs.
	UserID *string
	// Name matches user IDs and display names.
	Name        *string
	Guests      *bool
	Deactivated *bool
	OrderBy     UserOrder
	Dir         Direction
}

func (q UsersQuery) values() *queryEncoder {
	return newQuery().
		optionalInt("from", q.From).
		optionalInt("limit", q.Limit).
		optionalString("user_id", q.UserID).
		optionalString("name", q.Name).
		optionalBool("guests", q.Guests).
		optionalBool("deactivated", q.Deactivated).
		optionalText("order_by", string(q.OrderBy)).
		optionalText("dir", string(q.Dir))
}

// Users is one page of the user listing.
type Users struct {
	Users []User `json:"users"`
	// NextToken is the From value of the next page, as a decimal string;
	// nil on the last page.
	NextToken *string `json:"next_token,omitempty"`
	Total     int64   `json:"total"`
}

// User returns one account.
func (c *Client) User(ctx context.Context, userID ref.UserID) (User, error) {
	return call[User](ctx, c, get(V2, "/users/"+escape(userID.String())))
}

// Users lists local accounts.
func (c *Client) Users(ctx context.Context, query UsersQuery) (Users, error) {
	return call[Users](ctx, c, get(V2, "/users").withQuery(query.values().encode()))
}

// UserJoinedRooms lists the rooms a user is joined to.
func (c *Client) UserJoinedRooms(ctx context.Context, userID ref.UserID) ([]ref.RoomID, error) {
	type response struct {
		JoinedRooms []ref.RoomID `json:"joined_rooms"`
		Total       int          `json:"total"`
	}
	return project(ctx, c, get(V1, "/users/"+escape(userID.String())+"/joined_rooms"),
		func(r response) []ref.RoomID { return r.JoinedRooms })
}

// ResetPassword sets a local user's password. With logoutDevices, every
// existing session of the user is invalidated.
//
// The password is converted to a string at the JSON serialization
// boundary; the caller owns any secure buffer it came from.
func (c *Client) ResetPassword(ctx context.Context, userID ref.UserID, newPassword string, logoutDevices bool) error {
	body := struct {
		NewPassword   string `json:"new_password"`
		LogoutDevices bool   `json:"logout_devices"`
	}{NewPassword: newPassword, LogoutDevices: logoutDevices}
	_, err := call[empty](ctx, c, post(V1, "/reset_password/"+escape(userID.String()), body))
	return err
}

// DeactivateUser deactivates an account. With erase, the user's messages
// are hidden from users who join rooms later. Returns the identity
// server unbind result ("success" or "no-support").
func (c *Client) DeactivateUser(ctx context.Context, userID ref.UserID, erase bool) (string, error) {
	type request struct {
		Erase bool `json:"erase"`
	}
	type response struct {
		IDServerUnbindResult string `json:"id_server_unbind_result"`
	}
	return project(ctx, c, post(V1, "/deactivate/"+escape(userID.String()), request{Erase: erase}),
		func(r response) string { return r.IDServerUnbindResult })
}

// SetUserSuspended suspends or unsuspends a local user. A suspended user
// can read but not send.
func (c *Client) SetUserSuspended(ctx context.Context, userID ref.UserID, suspended bool) error {
	type request struct {
		Suspend bool `json:"suspend"`
	}
	// The response key embeds the user ID ("user_@a:b_suspended"), so the
	// body is only checked for shape.
	_, err := call[map[string]bool](ctx, c, put(V1, "/suspend/"+escape(userID.String()), request{Suspend: suspended}))
	return err
}
