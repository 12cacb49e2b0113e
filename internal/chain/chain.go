// chain читает баланс ERC-20 токена через JSON-RPC узел.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	// ErrInvalidAddress — строка не является адресом (или не проходит checksum).
	ErrInvalidAddress = errors.New("invalid address")
	// ErrContractNotFound — по адресу токена нет кода контракта.
	ErrContractNotFound = errors.New("token contract not found")
)

// Минимальный ABI: только то, что нужно для чтения баланса.
const erc20ABI = `[
 {"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
 {"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

// ContractCaller — подмножество ethclient.Client, которое использует Reader.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// Reader реализует access.BalanceReader поверх ERC-20 balanceOf/decimals.
type Reader struct {
	client  ContractCaller
	closer  func()
	token   common.Address
	abi     abi.ABI
	timeout time.Duration
}

// Dial подключается к RPC-узлу и возвращает Reader для токена tokenAddress.
func Dial(ctx context.Context, rpcURL, tokenAddress string, timeout time.Duration) (*Reader, error) {
	const op = "chain.Dial"

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r, err := NewReader(client, tokenAddress, timeout)
	if err != nil {
		client.Close()
		return nil, err
	}
	r.closer = client.Close

	return r, nil
}

// NewReader собирает Reader поверх готового клиента.
func NewReader(client ContractCaller, tokenAddress string, timeout time.Duration) (*Reader, error) {
	const op = "chain.NewReader"

	if !IsValidAddress(tokenAddress) {
		return nil, fmt.Errorf("%s: token: %w", op, ErrInvalidAddress)
	}

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("%s: abi: %w", op, err)
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Reader{
		client:  client,
		token:   common.HexToAddress(tokenAddress),
		abi:     parsed,
		timeout: timeout,
	}, nil
}

// Close закрывает RPC-соединение, если Reader создан через Dial.
func (r *Reader) Close() {
	if r.closer != nil {
		r.closer()
	}
}

// TokenBalance возвращает баланс address в единицах токена (с учётом decimals)
// десятичной строкой без хвостовых нулей: "0", "1.5", "1200".
func (r *Reader) TokenBalance(ctx context.Context, address string) (string, error) {
	const op = "chain.Reader.TokenBalance"

	if !IsValidAddress(address) {
		return "0", fmt.Errorf("%s: %w", op, ErrInvalidAddress)
	}
	owner := common.HexToAddress(address)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	code, err := r.client.CodeAt(ctx, r.token, nil)
	if err != nil {
		return "0", fmt.Errorf("%s: code_at: %w", op, err)
	}
	if len(code) == 0 {
		return "0", fmt.Errorf("%s: %s: %w", op, r.token.Hex(), ErrContractNotFound)
	}

	raw, err := r.call(ctx, "balanceOf", owner)
	if err != nil {
		return "0", fmt.Errorf("%s: %w", op, err)
	}
	balance, ok := raw.(*big.Int)
	if !ok {
		return "0", fmt.Errorf("%s: balanceOf: unexpected type %T", op, raw)
	}

	raw, err = r.call(ctx, "decimals")
	if err != nil {
		return "0", fmt.Errorf("%s: %w", op, err)
	}
	decimals, ok := raw.(uint8)
	if !ok {
		return "0", fmt.Errorf("%s: decimals: unexpected type %T", op, raw)
	}

	return FormatUnits(balance, decimals), nil
}

// call упаковывает вызов view-метода, выполняет eth_call и возвращает первый output.
func (r *Reader) call(ctx context.Context, method string, args ...any) (any, error) {
	data, err := r.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: pack: %w", method, err)
	}

	out, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &r.token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: call: %w", method, err)
	}

	values, err := r.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("%s: unpack: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s: empty output", method)
	}

	return values[0], nil
}

// IsValidAddress проверяет формат адреса: 40 hex-символов с необязательным 0x.
// Адрес в смешанном регистре обязан совпадать со своей EIP-55 контрольной суммой.
func IsValidAddress(s string) bool {
	if !common.IsHexAddress(s) {
		return false
	}

	hex := s
	if len(hex) >= 2 && (hex[:2] == "0x" || hex[:2] == "0X") {
		hex = hex[2:]
	}
	if hex == strings.ToLower(hex) || hex == strings.ToUpper(hex) {
		return true
	}

	return common.HexToAddress(s).Hex()[2:] == hex
}

// FormatUnits делит value на 10^decimals и печатает результат без потери точности.
func FormatUnits(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}

	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	s := new(big.Rat).SetFrac(value, denom).FloatString(int(decimals))
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")

	return s
}
