package build_info

// Set during build with -ldflags "-X github.com/warp-contracts/market/src/utils/build_info.Version=..."
var Version = "dev"
