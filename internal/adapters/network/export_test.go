package network

var NewFetcherWithClient = newFetcherWithClient
