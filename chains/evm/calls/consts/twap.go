package consts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var TwapABI, _ = abi.JSON(strings.NewReader(`
[
  {
    "inputs": [
      {
        "internalType": "address",
        "name": "exchange",
        "type": "address"
      },
      {
        "internalType": "address",
        "name": "srcToken",
        "type": "address"
      },
      {
        "internalType": "address",
        "name": "dstToken",
        "type": "address"
      },
      {
        "internalType": "uint256",
        "name": "srcAmount",
        "type": "uint256"
      },
      {
        "internalType": "uint256",
        "name": "srcBidAmount",
        "type": "uint256"
      },
      {
        "internalType": "uint256",
        "name": "dstMinAmount",
        "type": "uint256"
      },
      {
        "internalType": "uint256",
        "name": "deadline",
        "type": "uint256"
      },
      {
        "internalType": "uint256",
        "name": "bidDelay",
        "type": "uint256"
      },
      {
        "internalType": "uint256",
        "name": "fillDelay",
        "type": "uint256"
      },
      {
        "internalType": "bytes",
        "name": "data",
        "type": "bytes"
      }
    ],
    "name": "ask",
    "outputs": [
      {
        "internalType": "uint64",
        "name": "id",
        "type": "uint64"
      }
    ],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      {
        "indexed": true,
        "internalType": "uint64",
        "name": "id",
        "type": "uint64"
      },
      {
        "indexed": true,
        "internalType": "address",
        "name": "maker",
        "type": "address"
      }
    ],
    "name": "OrderCreated",
    "type": "event"
  },
  {
    "inputs": [
      {
        "internalType": "uint64[]",
        "name": "ids",
        "type": "uint64[]"
      }
    ],
    "name": "cancel",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]
`))
