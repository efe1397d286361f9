package gateway

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI fragments for the three deployed surfaces. Method signatures are fixed
// by the contracts; only the methods this client calls are declared.

const authABIJSON = `[
  {"type":"function","name":"signup","stateMutability":"nonpayable",
   "inputs":[{"name":"email","type":"string"},{"name":"password","type":"string"}],"outputs":[]},
  {"type":"function","name":"login","stateMutability":"view",
   "inputs":[{"name":"emailHash","type":"bytes32"},{"name":"password","type":"string"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getUserByEmailHash","stateMutability":"view",
   "inputs":[{"name":"emailHash","type":"bytes32"}],
   "outputs":[{"name":"","type":"address"}]}
]`

const profileABIJSON = `[
  {"type":"function","name":"createProfile","stateMutability":"nonpayable",
   "inputs":[{"name":"name","type":"string"},{"name":"email","type":"string"},{"name":"bio","type":"string"}],"outputs":[]},
  {"type":"function","name":"updateBio","stateMutability":"nonpayable",
   "inputs":[{"name":"newBio","type":"string"}],"outputs":[]},
  {"type":"function","name":"updateName","stateMutability":"nonpayable",
   "inputs":[{"name":"newName","type":"string"}],"outputs":[]},
  {"type":"function","name":"addFriend","stateMutability":"nonpayable",
   "inputs":[{"name":"friend","type":"address"}],"outputs":[]},
  {"type":"function","name":"removeFriend","stateMutability":"nonpayable",
   "inputs":[{"name":"friend","type":"address"}],"outputs":[]},
  {"type":"function","name":"isFriend","stateMutability":"view",
   "inputs":[{"name":"a","type":"address"},{"name":"b","type":"address"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getProfile","stateMutability":"view",
   "inputs":[{"name":"wallet","type":"address"}],
   "outputs":[
     {"name":"name","type":"string"},
     {"name":"email","type":"string"},
     {"name":"bio","type":"string"},
     {"name":"wallet","type":"address"},
     {"name":"createdAt","type":"uint256"},
     {"name":"posts","type":"tuple[]","components":[
       {"name":"text","type":"string"},
       {"name":"timestamp","type":"uint256"},
       {"name":"isPublic","type":"bool"}]}]},
  {"type":"function","name":"getProfileByEmail","stateMutability":"view",
   "inputs":[{"name":"email","type":"string"}],
   "outputs":[
     {"name":"name","type":"string"},
     {"name":"email","type":"string"},
     {"name":"bio","type":"string"},
     {"name":"wallet","type":"address"},
     {"name":"createdAt","type":"uint256"},
     {"name":"posts","type":"tuple[]","components":[
       {"name":"text","type":"string"},
       {"name":"timestamp","type":"uint256"},
       {"name":"isPublic","type":"bool"}]}]},
  {"type":"function","name":"getFriends","stateMutability":"view",
   "inputs":[{"name":"wallet","type":"address"}],
   "outputs":[{"name":"","type":"address[]"}]},
  {"type":"function","name":"sendFriendRequest","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"}],"outputs":[]},
  {"type":"function","name":"acceptFriendRequest","stateMutability":"nonpayable",
   "inputs":[{"name":"from","type":"address"}],"outputs":[]},
  {"type":"function","name":"rejectFriendRequest","stateMutability":"nonpayable",
   "inputs":[{"name":"from","type":"address"}],"outputs":[]},
  {"type":"function","name":"listFriendRequests","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"address[]"}]}
]`

const postABIJSON = `[
  {"type":"function","name":"createPost","stateMutability":"nonpayable",
   "inputs":[{"name":"text","type":"string"},{"name":"isPublic","type":"bool"}],"outputs":[]},
  {"type":"function","name":"likePost","stateMutability":"nonpayable",
   "inputs":[{"name":"postId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"commentOnPost","stateMutability":"nonpayable",
   "inputs":[{"name":"postId","type":"uint256"},{"name":"comment","type":"string"}],"outputs":[]},
  {"type":"function","name":"sharePost","stateMutability":"nonpayable",
   "inputs":[{"name":"postId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"getUserPosts","stateMutability":"view",
   "inputs":[{"name":"user","type":"address"}],
   "outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getComments","stateMutability":"view",
   "inputs":[{"name":"postId","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple[]","components":[
     {"name":"commenter","type":"address"},
     {"name":"text","type":"string"},
     {"name":"timestamp","type":"uint256"}]}]},
  {"type":"function","name":"getLikes","stateMutability":"view",
   "inputs":[{"name":"postId","type":"uint256"}],
   "outputs":[{"name":"","type":"address[]"}]},
  {"type":"function","name":"posts","stateMutability":"view",
   "inputs":[{"name":"postId","type":"uint256"}],
   "outputs":[
     {"name":"id","type":"uint256"},
     {"name":"author","type":"address"},
     {"name":"text","type":"string"},
     {"name":"timestamp","type":"uint256"},
     {"name":"isPublic","type":"bool"},
     {"name":"likeCount","type":"uint256"}]}
]`

var (
	authABI    = mustParseABI(authABIJSON)
	profileABI = mustParseABI(profileABIJSON)
	postABI    = mustParseABI(postABIJSON)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic("gateway: bad ABI literal: " + err.Error())
	}
	return parsed
}
