package mirror

import (
	"context"
	"net/url"
	"strconv"
)

// TokenBalance is a token balance entry of an account
type TokenBalance struct {
	TokenID              string `json:"token_id"`
	Balance              int64  `json:"balance"`
	AutomaticAssociation bool   `json:"automatic_association,omitempty"`
	FreezeStatus         string `json:"freeze_status,omitempty"`
	KYCStatus            string `json:"kyc_status,omitempty"`
	CreatedTimestamp     string `json:"created_timestamp,omitempty"`
}

// Balance is the embedded balance block of /accounts/{id}
type Balance struct {
	Balance   int64          `json:"balance"`
	Timestamp string         `json:"timestamp"`
	Tokens    []TokenBalance `json:"tokens"`
}

// Key is an account key as reported by the mirror
type Key struct {
	Type string `json:"_type"`
	Key  string `json:"key"`
}

// Account is /accounts/{id}
type Account struct {
	Account                       string  `json:"account"`
	Alias                         string  `json:"alias"`
	EVMAddress                    string  `json:"evm_address"`
	Balance                       Balance `json:"balance"`
	Key                           *Key    `json:"key"`
	Memo                          string  `json:"memo"`
	Deleted                       bool    `json:"deleted"`
	MaxAutomaticTokenAssociations int     `json:"max_automatic_token_associations"`
	CreatedTimestamp              string  `json:"created_timestamp"`
}

// GetAccount fetches an account by id, alias or EVM address
func (c *Client) GetAccount(ctx context.Context, idOrAddress string) (*Account, error) {
	var acct Account
	params := url.Values{"transactions": []string{"false"}}
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(idOrAddress), params, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

type tokensPage struct {
	Tokens []TokenBalance `json:"tokens"`
	Links  Links          `json:"links"`
}

// GetAccountTokens lists the account's token associations and balances.
// An empty tokenID lists all of them.
func (c *Client) GetAccountTokens(ctx context.Context, accountID, tokenID string) ([]TokenBalance, error) {
	params := url.Values{"limit": []string{"100"}}
	if tokenID != "" {
		params.Set("token.id", tokenID)
	}
	target := c.baseURL + "/api/v1/accounts/" + url.PathEscape(accountID) + "/tokens?" + params.Encode()
	var out []TokenBalance
	for page := 0; target != "" && page < c.maxPages; page++ {
		var p tokensPage
		if err := c.do(ctx, "GET", target, nil, &p); err != nil {
			return out, err
		}
		out = append(out, p.Tokens...)
		target = c.nextURL(p.Links.Next)
	}
	return out, nil
}

// NFT is an entry of /accounts/{id}/nfts
type NFT struct {
	AccountID         string `json:"account_id"`
	TokenID           string `json:"token_id"`
	SerialNumber      int64  `json:"serial_number"`
	Spender           string `json:"spender"`
	DelegatingSpender string `json:"delegating_spender"`
	Metadata          string `json:"metadata"`
	Deleted           bool   `json:"deleted"`
	CreatedTimestamp  string `json:"created_timestamp"`
}

type nftsPage struct {
	NFTs  []NFT `json:"nfts"`
	Links Links `json:"links"`
}

// GetAccountNFTs lists NFTs owned by an account, optionally for one token
func (c *Client) GetAccountNFTs(ctx context.Context, accountID, tokenID string) ([]NFT, error) {
	params := url.Values{"limit": []string{"100"}}
	if tokenID != "" {
		params.Set("token.id", tokenID)
	}
	target := c.baseURL + "/api/v1/accounts/" + url.PathEscape(accountID) + "/nfts?" + params.Encode()
	var out []NFT
	for page := 0; target != "" && page < c.maxPages; page++ {
		var p nftsPage
		if err := c.do(ctx, "GET", target, nil, &p); err != nil {
			return out, err
		}
		out = append(out, p.NFTs...)
		target = c.nextURL(p.Links.Next)
	}
	return out, nil
}

// Token is /tokens/{id}. Numeric supply fields come back as strings.
type Token struct {
	TokenID           string `json:"token_id"`
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	Decimals          string `json:"decimals"`
	TotalSupply       string `json:"total_supply"`
	MaxSupply         string `json:"max_supply"`
	SupplyType        string `json:"supply_type"`
	Type              string `json:"type"`
	TreasuryAccountID string `json:"treasury_account_id"`
	Memo              string `json:"memo"`
	Deleted           bool   `json:"deleted"`
}

// DecimalsInt returns Decimals as an int, 0 when unparsable
func (t *Token) DecimalsInt() int {
	d, err := strconv.Atoi(t.Decimals)
	if err != nil {
		return 0
	}
	return d
}

// IsNFT reports whether the token is a NON_FUNGIBLE_UNIQUE collection
func (t *Token) IsNFT() bool {
	return t.Type == "NON_FUNGIBLE_UNIQUE"
}

// GetToken fetches token metadata
func (c *Client) GetToken(ctx context.Context, tokenID string) (*Token, error) {
	var tok Token
	if err := c.get(ctx, "/api/v1/tokens/"+url.PathEscape(tokenID), nil, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}
